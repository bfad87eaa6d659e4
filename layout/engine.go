package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ByLCY/tltxt/errs"
)

// Engine 逐个 token 地在 host 上创建 shape，并用 host 回报的真实外接矩形
// 推进游标。一次 Place 调用独占它的游标，调用之间不共享状态。
type Engine struct {
	host ShapeHost
	log  *zap.Logger
	run  string
	ids  IDGenerator
}

// New 创建布局引擎。host 为 nil 时 Place 返回 HostUnavailable。
func New(host ShapeHost, opts ...Option) *Engine {
	e := &Engine{host: host, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout 先根据配置生成布局行（折行或按换行切分），再逐个放置。
func (e *Engine) Layout(ctx context.Context, text string, cfg Config) (*Result, error) {
	if err := e.precheck(ctx, cfg); err != nil {
		return nil, err
	}
	rows, err := Rows(text, cfg)
	if err != nil {
		return nil, err
	}
	return e.place(ctx, rows, cfg)
}

// PlaceText 放置已折行的文本：按 "\n" 切行，按空白切词。
func (e *Engine) PlaceText(ctx context.Context, reflowed string, cfg Config) (*Result, error) {
	return e.Place(ctx, SplitRows(reflowed), cfg)
}

// Place 按段落→行→词的顺序放置 rows。测量失败时立即中止，返回已放置的
// 部分结果和携带 token 位置的 MeasurementFailure；已创建的 shape 不回滚。
func (e *Engine) Place(ctx context.Context, rows []Row, cfg Config) (*Result, error) {
	if err := e.precheck(ctx, cfg); err != nil {
		return nil, err
	}
	return e.place(ctx, rows, cfg)
}

func (e *Engine) precheck(ctx context.Context, cfg Config) error {
	if e == nil || e.host == nil {
		return errs.HostUnavailable("layout", errors.New("shape host not initialized"))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c, ok := e.host.(Checker); ok {
		if err := c.Check(ctx); err != nil {
			return errs.HostUnavailable("layout", err)
		}
	}
	return nil
}

// cursor 是一次运行内的写入位置；rowMaxY 记录当前行最高 token 的底边。
type cursor struct {
	x, y    float64
	rowTop  float64
	rowMaxY float64
	lastH   float64
}

func (e *Engine) place(ctx context.Context, rows []Row, cfg Config) (*Result, error) {
	run := e.run
	if run == "" {
		run = uuid.NewString()
	}
	ids := e.ids
	if ids == nil {
		ids = TemplateIDs{Template: cfg.IDTemplate}
	}
	log := e.log.With(zap.String("run", run))

	tokenIDs, err := assignIDs(rows, run, ids)
	if err != nil {
		log.Warn("token id 冲突，未创建任何 shape", zap.Error(err))
		return nil, err
	}

	res := &Result{Run: run, Rows: rows}
	cur := cursor{x: cfg.StartX, y: cfg.StartY}
	index := 0

	for li, row := range rows {
		if len(row.Words) == 0 {
			if cfg.EmptyRows == EmptyRowAdvance {
				h := cfg.EmptyRowHeight
				if h == 0 {
					h = cur.lastH
				}
				cur.y += h + cfg.SpaceY
			}
			continue
		}

		cur.rowTop = cur.y
		cur.rowMaxY = math.Inf(-1)
		for wi, word := range row.Words {
			pos := Position{Run: run, Index: index, Paragraph: row.Paragraph, Line: li, Word: wi}
			if err := ctx.Err(); err != nil {
				log.Warn("布局被取消", zap.Int("token", index))
				return res, fmt.Errorf("layout: 在 token %d 处取消: %w", index, err)
			}

			id := tokenIDs[index]
			tok := Token{
				ID:        id,
				Text:      word,
				X:         cur.x,
				Y:         cur.y,
				Style:     cfg.Style,
				Paragraph: row.Paragraph,
				Line:      li,
				Word:      wi,
				Index:     index,
			}
			box, err := e.realize(ctx, tok)
			if err != nil {
				mf := &errs.Error{Kind: errs.KindMeasurementFailure, Op: "layout", Err: err}
				setPosition(mf, pos, id)
				log.Warn("测量失败，中止剩余布局", zap.Int("token", index), zap.String("id", id), zap.Error(err))
				return res, mf
			}
			tok.Box = box
			res.Tokens = append(res.Tokens, tok)
			if len(res.Tokens) == 1 {
				res.Bounds = box
			} else {
				res.Bounds = res.Bounds.Union(box)
			}
			log.Debug("已放置 token",
				zap.Int("token", index),
				zap.String("text", word),
				zap.Float64("x", tok.X),
				zap.Float64("y", tok.Y),
				zap.Float64("maxX", box.MaxX),
				zap.Float64("maxY", box.MaxY))

			cur.x = box.MaxX + cfg.SpaceX
			cur.rowMaxY = max(cur.rowMaxY, box.MaxY)
			index++
		}
		cur.lastH = cur.rowMaxY - cur.rowTop
		cur.x = cfg.StartX
		cur.y = cur.rowMaxY + cfg.SpaceY
	}

	log.Info("布局完成", zap.Int("rows", len(rows)), zap.Int("tokens", len(res.Tokens)))
	return res, nil
}

// assignIDs 在创建任何 shape 之前按放置顺序生成全部 token id；
// 任意两个 token 的 id 相同即为 InvalidConfiguration。
func assignIDs(rows []Row, run string, ids IDGenerator) ([]string, error) {
	var out []string
	seen := make(map[string]Position)
	index := 0
	for li, row := range rows {
		for wi := range row.Words {
			pos := Position{Run: run, Index: index, Paragraph: row.Paragraph, Line: li, Word: wi}
			id := ids.ID(pos)
			if first, dup := seen[id]; dup {
				err := errs.InvalidConfiguration("layout", "idTemplate",
					"duplicate token id %q (tokens %d and %d)", id, first.Index, index)
				setPosition(err, pos, id)
				return nil, err
			}
			seen[id] = pos
			out = append(out, id)
			index++
		}
	}
	return out, nil
}

// realize 创建 shape 并读回其外接矩形，两步严格有序。
func (e *Engine) realize(ctx context.Context, tok Token) (Box, error) {
	shape := Shape{
		Kind:  ShapeKindText,
		ID:    tok.ID,
		X:     tok.X,
		Y:     tok.Y,
		Text:  tok.Text,
		Style: tok.Style,
	}
	if err := e.host.CreateShape(ctx, shape); err != nil {
		return Box{}, fmt.Errorf("创建 shape 失败: %w", err)
	}
	box, err := e.host.BoundingBox(ctx, tok.ID)
	if err != nil {
		return Box{}, fmt.Errorf("读取外接矩形失败: %w", err)
	}
	for _, v := range []float64{box.MinX, box.MinY, box.MaxX, box.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Box{}, fmt.Errorf("host 返回了无效的外接矩形 %+v", box)
		}
	}
	return box, nil
}

func setPosition(err *errs.Error, pos Position, id string) {
	err.Token = pos.Index
	err.Paragraph = pos.Paragraph
	err.Line = pos.Line
	err.Word = pos.Word
	err.ID = id
}
