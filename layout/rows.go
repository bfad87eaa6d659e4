package layout

import (
	"strings"

	"github.com/ByLCY/tltxt/reflow"
)

// SeparatorParagraph 标记 AddBlankLines 插入的段间空行。
const SeparatorParagraph = -1

// Rows 把原始文本转换为布局行。WrapText 为 false 时完全绕过折行，
// 仅按换行符切分。
func Rows(text string, cfg Config) ([]Row, error) {
	if !cfg.WrapText {
		return SplitRows(text), nil
	}
	paras, err := reflow.Paragraphs(text, cfg.MaxCharWidth)
	if err != nil {
		return nil, err
	}
	var rows []Row
	for i, p := range paras {
		if i > 0 && cfg.AddBlankLines {
			rows = append(rows, Row{Paragraph: SeparatorParagraph})
		}
		for _, l := range p.Lines {
			rows = append(rows, Row{Paragraph: p.Index, Words: l.Words})
		}
	}
	return rows, nil
}

// SplitRows 按 "\n" 切行、按空白串切词。连续空行之后的下一个非空行开启
// 新段落；开头的空行属于第 0 段。
func SplitRows(text string) []Row {
	lines := strings.Split(text, "\n")
	rows := make([]Row, 0, len(lines))
	para := 0
	seenContent, pendingBreak := false, false
	for _, line := range lines {
		words := reflow.Words(strings.TrimSuffix(line, "\r"))
		if len(words) == 0 {
			pendingBreak = seenContent
			rows = append(rows, Row{Paragraph: para})
			continue
		}
		if pendingBreak {
			para++
			pendingBreak = false
		}
		seenContent = true
		rows = append(rows, Row{Paragraph: para, Words: words})
	}
	return rows
}
