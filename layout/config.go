package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/tltxt/binding"
	"github.com/ByLCY/tltxt/errs"
)

// EmptyRowPolicy 决定空行（零个词）如何推进纵向游标。
type EmptyRowPolicy string

const (
	// EmptyRowAdvance 让空行占据 EmptyRowHeight + SpaceY 的高度，
	// 避免下一段首行与上一行重叠。
	EmptyRowAdvance EmptyRowPolicy = "advance"
	// EmptyRowLegacy：空行不产生 token，游标保持不动。
	EmptyRowLegacy EmptyRowPolicy = "legacy"
)

// DefaultIDTemplate 是默认的 shape id 格式。
const DefaultIDTemplate = "shape:text-${run}_${line}_${word}"

// Config 是一次运行的不可变配置快照，按值传递给排版各阶段。
type Config struct {
	StartX        float64 `json:"startX" mapstructure:"start_x"`
	StartY        float64 `json:"startY" mapstructure:"start_y"`
	SpaceX        float64 `json:"spaceX" mapstructure:"space_x"`
	SpaceY        float64 `json:"spaceY" mapstructure:"space_y"`
	WrapText      bool    `json:"wrapText" mapstructure:"wrap_text"`
	MaxCharWidth  int     `json:"maxCharWidth" mapstructure:"max_char_width"`
	AddBlankLines bool    `json:"addBlankLines" mapstructure:"add_blank_lines"`

	EmptyRows EmptyRowPolicy `json:"emptyRows" mapstructure:"empty_rows"`
	// EmptyRowHeight 为 0 时使用上一个非空行的高度。
	EmptyRowHeight float64 `json:"emptyRowHeight" mapstructure:"empty_row_height"`
	IDTemplate     string  `json:"idTemplate" mapstructure:"id_template"`

	Style Style `json:"style" mapstructure:"style"`
}

// DefaultConfig 返回默认布局常量。
func DefaultConfig() Config {
	return Config{
		StartX:        200,
		StartY:        100,
		SpaceX:        35,
		SpaceY:        120,
		WrapText:      true,
		MaxCharWidth:  60,
		AddBlankLines: false,
		EmptyRows:     EmptyRowAdvance,
		IDTemplate:    DefaultIDTemplate,
		Style: Style{
			Size:  "m",
			Color: "white",
			Font:  "serif",
			Align: "start",
		},
	}
}

// Validate 在布局开始前拒绝无效配置。
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"startX", c.StartX},
		{"startY", c.StartY},
		{"spaceX", c.SpaceX},
		{"spaceY", c.SpaceY},
		{"emptyRowHeight", c.EmptyRowHeight},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errs.InvalidConfiguration("layout", f.name, "missing or non-finite value %v", f.v)
		}
	}
	if c.WrapText && c.MaxCharWidth <= 0 {
		return errs.InvalidConfiguration("layout", "maxCharWidth", "must be > 0, got %d", c.MaxCharWidth)
	}
	if c.EmptyRowHeight < 0 {
		return errs.InvalidConfiguration("layout", "emptyRowHeight", "must be >= 0, got %g", c.EmptyRowHeight)
	}
	switch c.EmptyRows {
	case EmptyRowAdvance, EmptyRowLegacy:
	default:
		return errs.InvalidConfiguration("layout", "emptyRows", "unknown policy %q", c.EmptyRows)
	}
	if err := validateTemplate(c.IDTemplate); err != nil {
		return errs.InvalidConfiguration("layout", "idTemplate", "%v", err)
	}
	return nil
}

// validateTemplate 要求模板能区分同一次运行中的每个 token。
func validateTemplate(tpl string) error {
	if strings.TrimSpace(tpl) == "" {
		return fmt.Errorf("template is empty")
	}
	seen := map[string]bool{}
	for _, name := range binding.Names(tpl) {
		switch name {
		case "run", "index", "line", "word", "paragraph":
			seen[name] = true
		default:
			return fmt.Errorf("unknown placeholder ${%s}", name)
		}
	}
	if seen["index"] || (seen["line"] && seen["word"]) {
		return nil
	}
	return fmt.Errorf("template %q must reference ${index} or both ${line} and ${word}", tpl)
}
