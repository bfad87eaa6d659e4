package layout_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/tltxt/errs"
	"github.com/ByLCY/tltxt/host/memory"
	"github.com/ByLCY/tltxt/layout"
)

// tallHost 的盒子高度随词长变化，用于验证"最高 token"规则。
type tallHost struct {
	boxes map[string]layout.Box
	order []string
}

func newTallHost() *tallHost { return &tallHost{boxes: map[string]layout.Box{}} }

func (h *tallHost) CreateShape(_ context.Context, s layout.Shape) error {
	n := float64(len(s.Text))
	h.boxes[s.ID] = layout.Box{MinX: s.X, MinY: s.Y, MaxX: s.X + n*10, MaxY: s.Y + n*20}
	h.order = append(h.order, s.ID)
	return nil
}

func (h *tallHost) BoundingBox(_ context.Context, id string) (layout.Box, error) {
	b, ok := h.boxes[id]
	if !ok {
		return layout.Box{}, errors.New("missing")
	}
	return b, nil
}

type constantIDs struct{}

func (constantIDs) ID(layout.Position) string { return "same" }

func TestHelloWorldScenario(t *testing.T) {
	host := memory.New()
	res, err := layout.New(host, layout.WithRunID("r1")).Layout(context.Background(), "hello world", layout.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Tokens, 2)

	hello, world := res.Tokens[0], res.Tokens[1]
	assert.Equal(t, "hello", hello.Text)
	assert.Equal(t, 200.0, hello.X)
	assert.Equal(t, 100.0, hello.Y)
	assert.Equal(t, "world", world.Text)
	assert.Equal(t, hello.Box.MaxX+35, world.X)
	assert.Equal(t, 100.0, world.Y)

	assert.Equal(t, "shape:text-r1_0_0", hello.ID)
	assert.Equal(t, "shape:text-r1_0_1", world.ID)
	assert.Equal(t, layout.DefaultConfig().Style, world.Style)

	shapes := host.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, layout.ShapeKindText, shapes[0].Kind)
	assert.Equal(t, "m", shapes[1].Style.Size)
}

func TestCursorInvariants(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.MaxCharWidth = 12
	host := newTallHost()
	text := "a bbb cc dddd e ff ggggg h ii jjj"
	res, err := layout.New(host).Layout(context.Background(), text, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Tokens)

	rowMaxY := map[int]float64{}
	for i, tok := range res.Tokens {
		rowMaxY[tok.Line] = max(rowMaxY[tok.Line], tok.Box.MaxY)
		if tok.Word == 0 {
			assert.Equal(t, cfg.StartX, tok.X, "token %d", i)
			if tok.Line > 0 {
				assert.Equal(t, rowMaxY[tok.Line-1]+cfg.SpaceY, tok.Y, "token %d", i)
			} else {
				assert.Equal(t, cfg.StartY, tok.Y)
			}
			continue
		}
		prev := res.Tokens[i-1]
		assert.Equal(t, prev.Box.MaxX+cfg.SpaceX, tok.X, "token %d", i)
		assert.Equal(t, prev.Y, tok.Y, "token %d", i)
	}

	var words []string
	for _, tok := range res.Tokens {
		words = append(words, tok.Text)
	}
	assert.Equal(t, strings.Fields(text), words)
	assert.Equal(t, len(res.Tokens), len(host.order))
}

func TestTallestTokenDrivesNextRow(t *testing.T) {
	cfg := layout.DefaultConfig()
	host := newTallHost()
	// 第一行：最高的是 "tallest"(7*20=140)，最后一个词 "x" 只有 20。
	res, err := layout.New(host).PlaceText(context.Background(), "tallest x\nnext", cfg)
	require.NoError(t, err)
	require.Len(t, res.Tokens, 3)
	assert.Equal(t, 100.0+140+120, res.Tokens[2].Y)
}

func TestWrapDisabledFeedsLiteralLines(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.WrapText = false
	cfg.MaxCharWidth = 0
	text := "alpha beta gamma delta\r\n\nsecond line"

	rows, err := layout.Rows(text, cfg)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, rows[0].Words)
	assert.Empty(t, rows[1].Words)
	assert.Equal(t, []string{"second", "line"}, rows[2].Words)
	assert.Equal(t, 1, rows[2].Paragraph)

	res, err := layout.New(memory.New()).Layout(context.Background(), text, cfg)
	require.NoError(t, err)
	require.Len(t, res.Tokens, 6)
	for _, tok := range res.Tokens[:4] {
		assert.Equal(t, 100.0, tok.Y)
	}
}

func TestHostUnavailable(t *testing.T) {
	_, err := layout.New(nil).Layout(context.Background(), "hello", layout.DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrHostUnavailable)

	host := memory.New()
	host.Detach()
	res, err := layout.New(host).Layout(context.Background(), "hello world", layout.DefaultConfig())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, errs.ErrHostUnavailable)
	assert.Empty(t, host.Shapes())
}

func TestMeasurementFailureAbortsAndKeepsPlacedTokens(t *testing.T) {
	cases := []struct {
		name string
		opts memory.Options
	}{
		{"bounding box lost", memory.Options{LoseAt: 3}},
		{"creation rejected", memory.Options{RejectAt: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host := memory.NewWithOptions(tc.opts)
			res, err := layout.New(host).Layout(context.Background(), "a b c d e", layout.DefaultConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrMeasurementFailure)

			var e *errs.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, 2, e.Token)
			assert.Equal(t, 0, e.Paragraph)
			assert.Equal(t, 0, e.Line)
			assert.Equal(t, 2, e.Word)
			assert.NotEmpty(t, e.ID)

			require.NotNil(t, res)
			require.Len(t, res.Tokens, 2)
			assert.Equal(t, "b", res.Tokens[1].Text)
		})
	}
}

func TestEmptyRowPolicies(t *testing.T) {
	text := "one\n\ntwo"
	base := layout.DefaultConfig()
	base.AddBlankLines = true

	cases := []struct {
		name   string
		policy layout.EmptyRowPolicy
		height float64
		wantY  float64
	}{
		// one: y=100, maxY=136 → 256；空行推进上一行高度 36 + 120。
		{"advance by previous row", layout.EmptyRowAdvance, 0, 256 + 36 + 120},
		{"advance by fixed height", layout.EmptyRowAdvance, 10, 256 + 10 + 120},
		{"legacy keeps cursor", layout.EmptyRowLegacy, 0, 256},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.EmptyRows = tc.policy
			cfg.EmptyRowHeight = tc.height
			res, err := layout.New(memory.New(), layout.WithRunID("r")).Layout(context.Background(), text, cfg)
			require.NoError(t, err)
			require.Len(t, res.Tokens, 2)
			assert.Equal(t, tc.wantY, res.Tokens[1].Y)
			assert.Equal(t, 2, res.Tokens[1].Line)
			assert.Equal(t, 1, res.Tokens[1].Paragraph)
			assert.Equal(t, "shape:text-r_2_0", res.Tokens[1].ID)
		})
	}
}

func TestDuplicateIDsRejected(t *testing.T) {
	host := memory.New()
	res, err := layout.New(host, layout.WithIDGenerator(constantIDs{})).Layout(context.Background(), "a b", layout.DefaultConfig())
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	assert.Nil(t, res)
	assert.Empty(t, host.Shapes())
}

func TestAmbiguousTemplateRejectedBeforeAnyShape(t *testing.T) {
	// 行 1 词 10 与行 11 词 0 都会得到 "s110"。
	cfg := layout.DefaultConfig()
	cfg.WrapText = false
	cfg.IDTemplate = "s${line}${word}"
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "w"
	}
	lines[1] = strings.TrimSpace(strings.Repeat("w ", 12))
	host := memory.New()

	res, err := layout.New(host, layout.WithRunID("r")).Layout(context.Background(), strings.Join(lines, "\n"), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	assert.Nil(t, res)
	assert.Empty(t, host.Shapes())

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "idTemplate", e.Field)
	assert.Equal(t, "s110", e.ID)
	assert.Equal(t, 11, e.Line)
	assert.Equal(t, 0, e.Word)
}

// pointHost 把每个 shape 报告为零尺寸的点。
type pointHost struct{ boxes map[string]layout.Box }

func (h *pointHost) CreateShape(_ context.Context, s layout.Shape) error {
	h.boxes[s.ID] = layout.Box{MinX: s.X, MinY: s.Y, MaxX: s.X, MaxY: s.Y}
	return nil
}

func (h *pointHost) BoundingBox(_ context.Context, id string) (layout.Box, error) {
	return h.boxes[id], nil
}

func TestBoundsKeepZeroSizeBoxAtOrigin(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.StartX, cfg.StartY = 0, 0
	res, err := layout.New(&pointHost{boxes: map[string]layout.Box{}}).Layout(context.Background(), "a b", cfg)
	require.NoError(t, err)
	require.Len(t, res.Tokens, 2)
	assert.Equal(t, layout.Box{}, res.Tokens[0].Box)
	assert.Equal(t, layout.Box{MinX: 0, MinY: 0, MaxX: 35, MaxY: 0}, res.Bounds)
}

func TestCancelledContextStopsBeforeFirstToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	host := memory.New()
	res, err := layout.New(host).Layout(ctx, "a b", layout.DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Tokens)
	assert.Empty(t, host.Shapes())
}

func TestInvalidConfigurationRejectedBeforeLayout(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.MaxCharWidth = 0
	host := memory.New()
	_, err := layout.New(host).Layout(context.Background(), "a", cfg)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	assert.Empty(t, host.Shapes())
}

func TestDefaultRunIDIsUniquePerRun(t *testing.T) {
	e := layout.New(memory.New())
	first, err := e.Layout(context.Background(), "a", layout.DefaultConfig())
	require.NoError(t, err)
	second, err := e.Layout(context.Background(), "a", layout.DefaultConfig())
	require.NoError(t, err)
	assert.NotEqual(t, first.Run, second.Run)
	assert.NotEqual(t, first.Tokens[0].ID, second.Tokens[0].ID)
}

func TestBoundsCoverAllTokens(t *testing.T) {
	res, err := layout.New(memory.New()).Layout(context.Background(), "ab cd\n\nefg", layout.DefaultConfig())
	require.NoError(t, err)
	for _, tok := range res.Tokens {
		assert.Equal(t, res.Bounds, res.Bounds.Union(tok.Box))
	}
	assert.Equal(t, 200.0, res.Bounds.MinX)
	assert.Equal(t, 100.0, res.Bounds.MinY)
}

func TestEngineLogsRun(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := layout.New(memory.New(), layout.WithLogger(zap.New(core)), layout.WithRunID("r9")).
		Layout(context.Background(), "a b", layout.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("已放置 token").Len())
	done := logs.FilterMessage("布局完成").All()
	require.Len(t, done, 1)
	assert.Equal(t, "r9", done[0].ContextMap()["run"])
	assert.EqualValues(t, 2, done[0].ContextMap()["tokens"])
}
