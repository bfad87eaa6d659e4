package canvashost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/tltxt/fonts"
	"github.com/ByLCY/tltxt/layout"
	"github.com/ByLCY/tltxt/renderer"
)

// 坐标约定：shape 坐标与外接矩形为 px；canvas 内部为 mm，字号为 pt，在边界换算。

// sizes 是 size 标签对应的字号（px）。
var sizes = map[string]float64{"s": 18, "m": 24, "l": 36, "xl": 44}

// palette 是常见颜色标签；其余值按 #RRGGBB 解析。
var palette = map[string]string{
	"black":        "#1d1d1d",
	"grey":         "#9fa8b2",
	"light-violet": "#e085f4",
	"violet":       "#ae3ec9",
	"blue":         "#4465e9",
	"light-blue":   "#4ba1f1",
	"yellow":       "#f1ac4b",
	"orange":       "#e16919",
	"green":        "#099268",
	"light-green":  "#4cb05e",
	"light-red":    "#f87777",
	"red":          "#e03131",
	"white":        "#ffffff",
}

const (
	defaultMargin = 40.0 // px
	darkBG        = "#101011"
	lightBG       = "#ffffff"
)

// Host 用真实字体度量测量每个 shape，并能把结果渲染为 PDF。
type Host struct {
	margin     float64
	background string

	mu     sync.Mutex
	shapes map[string]layout.Box

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ layout.ShapeHost  = (*Host)(nil)
	_ renderer.Renderer = (*Host)(nil)
)

// Options configures the canvas host.
type Options struct {
	Margin     float64 // 页面四周留白（px），默认 40
	Background string  // 背景色；为空时根据文字颜色自动选择深/浅色
}

// New creates a canvas host with default options.
func New() *Host { return NewWithOptions(Options{}) }

// NewWithOptions creates a canvas host.
func NewWithOptions(opts Options) *Host {
	margin := opts.Margin
	if margin <= 0 {
		margin = defaultMargin
	}
	return &Host{
		margin:     margin,
		background: opts.Background,
		shapes:     map[string]layout.Box{},
		families:   map[string]*canvas.FontFamily{},
	}
}

// CreateShape 测量文本并记录外接矩形。
func (h *Host) CreateShape(ctx context.Context, shape layout.Shape) error {
	if shape.Kind != layout.ShapeKindText {
		return fmt.Errorf("不支持的 shape 类型 %q", shape.Kind)
	}
	if shape.ID == "" {
		return errors.New("shape id 不能为空")
	}
	face, err := h.fontFace(shape.Style, canvas.Black)
	if err != nil {
		return err
	}
	width := face.TextWidth(shape.Text) * layout.MmToPx
	height := face.Metrics().LineHeight * layout.MmToPx

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.shapes[shape.ID]; ok {
		return fmt.Errorf("shape %s 已存在", shape.ID)
	}
	h.shapes[shape.ID] = layout.Box{
		MinX: shape.X,
		MinY: shape.Y,
		MaxX: shape.X + width,
		MaxY: shape.Y + height,
	}
	return nil
}

// BoundingBox 返回已创建 shape 的外接矩形。
func (h *Host) BoundingBox(ctx context.Context, id string) (layout.Box, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	box, ok := h.shapes[id]
	if !ok {
		return layout.Box{}, fmt.Errorf("找不到 shape %s", id)
	}
	return box, nil
}

// Render 把结果中的 token 绘制到单页 PDF，页面大小覆盖所有 token 外加留白。
func (h *Host) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Tokens) == 0 {
		return nil, fmt.Errorf("缺少可渲染的 token")
	}

	width := (result.Bounds.MaxX + h.margin) * layout.PxToMm
	height := (result.Bounds.MaxY + h.margin) * layout.PxToMm

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo("tltxt", "", "", "", "tltxt")

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	ctx.SetFillColor(canvas.Hex(h.backgroundFor(result)))
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	for _, tok := range result.Tokens {
		if err := h.drawToken(ctx, tok); err != nil {
			return nil, err
		}
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (h *Host) drawToken(ctx *canvas.Context, tok layout.Token) error {
	face, err := h.fontFace(tok.Style, colorFromTag(tok.Style.Color))
	if err != nil {
		return err
	}

	// 处理水平对齐：start（默认）/middle/end，相对于 token 的外接矩形。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tok.Style.Align) {
	case "middle", "center":
		textAlign = canvas.Center
		anchorX = (tok.Box.MinX + tok.Box.MaxX) / 2
	case "end", "right":
		textAlign = canvas.Right
		anchorX = tok.Box.MaxX
	default:
		textAlign = canvas.Left
		anchorX = tok.Box.MinX
	}

	line := canvas.NewTextLine(face, tok.Text, textAlign)
	// 基线位置：行顶部加上字体上升部（Ascent，mm）
	baseline := tok.Box.MinY*layout.PxToMm + face.Metrics().Ascent
	ctx.DrawText(anchorX*layout.PxToMm, baseline, line)
	return nil
}

func (h *Host) backgroundFor(result *layout.Result) string {
	if h.background != "" {
		return hexFromTag(h.background)
	}
	for _, tok := range result.Tokens {
		if strings.EqualFold(tok.Style.Color, "white") {
			return darkBG
		}
	}
	return lightBG
}

func (h *Host) fontFace(style layout.Style, col color.Color) (*canvas.FontFace, error) {
	family, err := h.ensureFontFamily(style.Font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePx(style.Size)*layout.PxToPt, col, canvas.FontRegular, canvas.FontNormal), nil
}

func (h *Host) ensureFontFamily(tag string) (*canvas.FontFamily, error) {
	key := strings.ToLower(tag)
	h.fontMu.Lock()
	defer h.fontMu.Unlock()

	if family, ok := h.families[key]; ok {
		return family, nil
	}
	data, err := fonts.Load(key)
	if err != nil {
		// 未知字体标签使用后备字体
		data, err = fonts.Load(fonts.Fallback)
		if err != nil {
			return nil, err
		}
	}
	family := canvas.NewFontFamily("tltxt-" + key)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", tag, err)
	}
	h.families[key] = family
	return family, nil
}

// sizePx 解析 size 标签；也接受 "20px"、"14pt" 这样的显式长度。
func sizePx(tag string) float64 {
	if px, ok := sizes[strings.ToLower(tag)]; ok {
		return px
	}
	if l, err := layout.ParseLength(tag); err == nil && l.Value > 0 {
		return l.ToPX()
	}
	return sizes["m"]
}

func hexFromTag(tag string) string {
	if hex, ok := palette[strings.ToLower(tag)]; ok {
		return hex
	}
	if strings.HasPrefix(tag, "#") {
		return tag
	}
	return palette["black"]
}

func colorFromTag(tag string) color.Color {
	return canvas.Hex(hexFromTag(tag))
}
