package layout

import "github.com/ByLCY/tltxt/binding"

// TemplateIDs 用 binding 模板生成 id，可用占位符：run、index、paragraph、line、word。
type TemplateIDs struct {
	Template string
}

func (t TemplateIDs) ID(pos Position) string {
	tpl := t.Template
	if tpl == "" {
		tpl = DefaultIDTemplate
	}
	return binding.Interpolate(tpl, map[string]any{
		"run":       pos.Run,
		"index":     pos.Index,
		"paragraph": pos.Paragraph,
		"line":      pos.Line,
		"word":      pos.Word,
	})
}
