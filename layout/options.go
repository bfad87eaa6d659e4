package layout

import (
	"context"

	"go.uber.org/zap"
)

// ShapeHost 是外部画布：先 CreateShape，再读回同一 id 的真实外接矩形。
// BoundingBox 必须在对应 CreateShape 成功返回后立即可用。
type ShapeHost interface {
	CreateShape(ctx context.Context, shape Shape) error
	BoundingBox(ctx context.Context, id string) (Box, error)
}

// Checker 由可以报告自身是否就绪的 host 实现，布局开始前调用一次。
type Checker interface {
	Check(ctx context.Context) error
}

// IDGenerator 为一次运行内的每个 token 生成唯一 id。
type IDGenerator interface {
	ID(pos Position) string
}

// Position 描述 token 在文档中的位置。
type Position struct {
	Run       string
	Index     int
	Paragraph int
	Line      int
	Word      int
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 注入结构化日志，默认不输出。
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRunID 固定本次运行的 id，便于测试与重放；默认每次 Place 生成一个 uuid。
func WithRunID(run string) Option {
	return func(e *Engine) { e.run = run }
}

// WithIDGenerator 替换基于模板的默认 id 生成器。
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}
