// Package reflow 实现段落感知的贪心折行：按空行切分段落，再把每段的词
// 按最大字符宽度装入行中。所有函数都是纯函数。
package reflow

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/ByLCY/tltxt/errs"
)

// paragraphBreak 匹配包含至少两个换行的空白串（即一个空行）。空白的范围与
// Words 使用的 unicode.IsSpace 一致：RE2 的 \s 只覆盖 ASCII，因此补上 \v、
// U+0085 与 Unicode 分隔符类 Z（NBSP、U+3000 等）。
var paragraphBreak = regexp.MustCompile(`\n[\s\v\x{85}\p{Z}]*\n`)

// Line 是同一视觉行上的词序列。
type Line struct {
	Words []string `json:"words"`
}

// Width 返回行的字符宽度：词长之和加上每个间隔一个空格。
func (l Line) Width() int {
	if len(l.Words) == 0 {
		return 0
	}
	w := len(l.Words) - 1
	for _, word := range l.Words {
		w += WordWidth(word)
	}
	return w
}

// String 以单个空格连接词。
func (l Line) String() string { return strings.Join(l.Words, " ") }

// Paragraph 是折行后的一个段落；空段落保留一行空行以保持段落数对齐。
type Paragraph struct {
	Index int    `json:"index"`
	Lines []Line `json:"lines"`
}

// Reflow 折行并渲染为以换行连接的文本。joinWithBlank 为 true 时段落之间
// 保留一个空行。
func Reflow(text string, maxWidth int, joinWithBlank bool) (string, error) {
	paras, err := Paragraphs(text, maxWidth)
	if err != nil {
		return "", err
	}
	return Render(paras, joinWithBlank), nil
}

// Paragraphs 返回结构化的折行结果，供布局阶段使用。
func Paragraphs(text string, maxWidth int) ([]Paragraph, error) {
	if maxWidth <= 0 {
		return nil, errs.InvalidConfiguration("reflow", "maxCharWidth", "must be > 0, got %d", maxWidth)
	}
	raw := SplitParagraphs(text)
	out := make([]Paragraph, 0, len(raw))
	for i, p := range raw {
		lines := Fill(Words(p), maxWidth)
		if len(lines) == 0 {
			lines = []Line{{}}
		}
		out = append(out, Paragraph{Index: i, Lines: lines})
	}
	return out, nil
}

// SplitParagraphs 按空行切分文本。首尾的空段落会被保留。
func SplitParagraphs(text string) []string {
	return paragraphBreak.Split(text, -1)
}

// Words 按任意空白串切词，丢弃首尾空白产生的空词。
func Words(s string) []string {
	return strings.Fields(s)
}

// WordWidth 以用户可感知字符（grapheme cluster）计数，组合符号不额外占宽。
func WordWidth(word string) int {
	return uniseg.GraphemeClusterCount(word)
}

// Fill 贪心装行：当前行非空且追加下一个词（含分隔空格）会超过 maxWidth 时
// 另起一行。超长的单词独占一行，不会被拆开。
func Fill(words []string, maxWidth int) []Line {
	var (
		lines   []Line
		current []string
		width   int
	)
	for _, word := range words {
		ww := WordWidth(word)
		if len(current) > 0 && width+ww+1 > maxWidth {
			lines = append(lines, Line{Words: current})
			current = []string{word}
			width = ww
			continue
		}
		if len(current) > 0 {
			width++
		}
		current = append(current, word)
		width += ww
	}
	if len(current) > 0 {
		lines = append(lines, Line{Words: current})
	}
	return lines
}

// Render 段内行以单个换行连接，段落之间用一个或两个换行。
func Render(paras []Paragraph, joinWithBlank bool) string {
	sep := "\n"
	if joinWithBlank {
		sep = "\n\n"
	}
	rendered := make([]string, 0, len(paras))
	for _, p := range paras {
		lines := make([]string, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, l.String())
		}
		rendered = append(rendered, strings.Join(lines, "\n"))
	}
	return strings.Join(rendered, sep)
}
