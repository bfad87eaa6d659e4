package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ByLCY/tltxt/errs"
	"github.com/ByLCY/tltxt/input"
	"github.com/ByLCY/tltxt/layout"
	"github.com/ByLCY/tltxt/logger"
	"github.com/ByLCY/tltxt/renderer"
	"github.com/ByLCY/tltxt/settings"

	canvashost "github.com/ByLCY/tltxt/host/canvas"
)

// options 汇总命令行参数。
type options struct {
	Input    string
	Settings string
	Output   string
	Debug    string
	Run      string
	Log      logger.Config
}

// surface 既能放置并测量 shape，也能把结果渲染出来。
type surface interface {
	layout.ShapeHost
	renderer.Renderer
}

func main() {
	opts := options{Log: logger.DefaultConfig()}
	flag.StringVar(&opts.Input, "in", "-", "文本输入路径，- 表示标准输入")
	flag.StringVar(&opts.Settings, "settings", "", "设置文件（.tltxt / .yaml / .json / .toml）")
	flag.StringVar(&opts.Output, "out", "output/board.pdf", "PDF 输出路径")
	flag.StringVar(&opts.Debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&opts.Run, "run", "", "运行标识（默认随机生成）")
	flag.StringVar(&opts.Log.Level, "log-level", opts.Log.Level, "日志级别：debug/info/warn/error")
	flag.StringVar(&opts.Log.Format, "log-format", opts.Log.Format, "日志格式：console/json")
	flag.StringVar(&opts.Log.File, "log-file", "", "同时写入的日志文件")
	flag.Parse()

	zl, err := logger.New(opts.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, canvashost.New(), zl); err != nil {
		if errors.Is(err, errs.ErrInputUnavailable) {
			log.Fatalf("没有可用的输入，未进行布局: %v", err)
		}
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", opts.Output)
}

// run 串联输入、设置、布局与渲染。
func run(ctx context.Context, opts options, s surface, zl *zap.Logger) error {
	if s == nil {
		return errs.HostUnavailable("run", errors.New("host 不能为空"))
	}
	if zl == nil {
		zl = zap.NewNop()
	}

	text, err := provider(opts.Input).ReadText(ctx)
	if err != nil {
		return err
	}

	cfg, err := settings.Load(opts.Settings)
	if err != nil {
		return fmt.Errorf("加载设置失败: %w", err)
	}

	engineOpts := []layout.Option{layout.WithLogger(zl)}
	if opts.Run != "" {
		engineOpts = append(engineOpts, layout.WithRunID(opts.Run))
	}
	result, err := layout.New(s, engineOpts...).Layout(ctx, text, cfg)
	if err != nil {
		// 部分结果仍然写出调试 JSON，便于定位失败的 token
		if result != nil && opts.Debug != "" {
			if derr := writeDebug(result, opts.Debug); derr != nil {
				zl.Warn("写入部分调试结果失败", zap.Error(derr))
			}
		}
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if opts.Debug != "" {
		if err := writeDebug(result, opts.Debug); err != nil {
			return err
		}
	}

	if opts.Output == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := s.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(opts.Output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func provider(path string) input.Provider {
	if path == "" || path == "-" {
		return input.Reader{R: os.Stdin}
	}
	return input.File(path)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
