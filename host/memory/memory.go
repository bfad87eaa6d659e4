// Package memory 提供一个内存中的 ShapeHost：外接矩形由文本长度确定性地
// 算出，不依赖任何 UI。用于测试与 dry-run。
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rivo/uniseg"

	"github.com/ByLCY/tltxt/layout"
)

// Errors reported by the fake host.
var (
	ErrDetached = errors.New("memory host detached")
	ErrRejected = errors.New("shape rejected")
	ErrUnknown  = errors.New("unknown shape id")
)

// DefaultHeights 按 size 标签给出行高（px），未知标签使用 Options.LineHeight。
var DefaultHeights = map[string]float64{"s": 26, "m": 36, "l": 52, "xl": 64}

// Options 配置盒子尺寸与故障注入。
type Options struct {
	CharWidth  float64            // 每个字符的宽度，默认 10
	LineHeight float64            // 未知 size 的行高，默认 36
	Heights    map[string]float64 // size 标签 → 行高，默认 DefaultHeights
	// RejectAt 让第 n 次（从 1 开始）CreateShape 失败；0 关闭。
	RejectAt int
	// LoseAt 让第 n 个 shape 创建成功但无法读回外接矩形；0 关闭。
	LoseAt int
}

// Host 按创建顺序记录 shape。
type Host struct {
	mu       sync.Mutex
	opts     Options
	shapes   []layout.Shape
	boxes    map[string]layout.Box
	creates  int
	detached bool
}

var (
	_ layout.ShapeHost = (*Host)(nil)
	_ layout.Checker   = (*Host)(nil)
)

// New creates a host with default options.
func New() *Host { return NewWithOptions(Options{}) }

// NewWithOptions creates a host with the given options; zero sizes fall back to defaults.
func NewWithOptions(opts Options) *Host {
	if opts.CharWidth <= 0 {
		opts.CharWidth = 10
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = 36
	}
	if opts.Heights == nil {
		opts.Heights = DefaultHeights
	}
	return &Host{opts: opts, boxes: map[string]layout.Box{}}
}

// Detach 模拟 host 消失（例如页面中没有画布应用）。
func (h *Host) Detach() {
	h.mu.Lock()
	h.detached = true
	h.mu.Unlock()
}

func (h *Host) Check(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detached {
		return ErrDetached
	}
	return nil
}

func (h *Host) CreateShape(ctx context.Context, shape layout.Shape) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detached {
		return ErrDetached
	}
	h.creates++
	n := h.creates
	if n == h.opts.RejectAt {
		return fmt.Errorf("%w: %s", ErrRejected, shape.ID)
	}
	h.shapes = append(h.shapes, shape)
	if n == h.opts.LoseAt {
		return nil
	}
	h.boxes[shape.ID] = h.measure(shape)
	return nil
}

func (h *Host) BoundingBox(ctx context.Context, id string) (layout.Box, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	box, ok := h.boxes[id]
	if !ok {
		return layout.Box{}, fmt.Errorf("%w: %s", ErrUnknown, id)
	}
	return box, nil
}

// Shapes 返回已创建 shape 的副本（按创建顺序）。
func (h *Host) Shapes() []layout.Shape {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]layout.Shape(nil), h.shapes...)
}

func (h *Host) measure(shape layout.Shape) layout.Box {
	height, ok := h.opts.Heights[shape.Style.Size]
	if !ok {
		height = h.opts.LineHeight
	}
	width := float64(uniseg.GraphemeClusterCount(shape.Text)) * h.opts.CharWidth
	return layout.Box{
		MinX: shape.X,
		MinY: shape.Y,
		MaxX: shape.X + width,
		MaxY: shape.Y + height,
	}
}
