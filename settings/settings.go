// Package settings 是设置面板的替代：从 .tltxt DSL 文件或 viper 支持的
// yaml/json/toml 文件（以及 TLTXT_* 环境变量）构造一次运行的 layout.Config。
package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/ByLCY/tltxt/dsl"
	"github.com/ByLCY/tltxt/errs"
	"github.com/ByLCY/tltxt/layout"
)

// DSLExt 是 DSL 设置文件的扩展名。
const DSLExt = ".tltxt"

// EnvPrefix 是环境变量前缀，例如 TLTXT_LAYOUT_START_X。
const EnvPrefix = "TLTXT"

// Load 读取设置并返回经过校验的配置。path 为空时只应用默认值与环境变量。
func Load(path string) (layout.Config, error) {
	if strings.EqualFold(filepath.Ext(path), DSLExt) {
		file, err := os.Open(path)
		if err != nil {
			return layout.Config{}, fmt.Errorf("无法打开设置文件 %s: %w", path, err)
		}
		defer file.Close()
		return Parse(file)
	}
	return loadViper(path)
}

// Parse 解析 DSL 设置并叠加到默认配置上。
func Parse(r io.Reader) (layout.Config, error) {
	f, err := dsl.Parse(r)
	if err != nil {
		return layout.Config{}, errs.InvalidConfiguration("settings", "", "解析设置 DSL 失败: %v", err)
	}
	return FromDSL(f, layout.DefaultConfig())
}

// FromDSL 将 DSL AST 应用到 base 上，未出现的字段保持 base 的值。
func FromDSL(f *dsl.File, base layout.Config) (layout.Config, error) {
	cfg := base
	if f != nil {
		for _, b := range f.Blocks {
			var err error
			switch b.Name {
			case "layout":
				err = applyLayout(&cfg, b)
			case "style":
				err = applyStyle(&cfg.Style, b)
			default:
				err = errs.InvalidConfiguration("settings", b.Name, "%s: 未知的设置段 %q", b.Pos, b.Name)
			}
			if err != nil {
				return layout.Config{}, err
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

func applyLayout(cfg *layout.Config, b *dsl.Block) error {
	for _, e := range b.Entries {
		var err error
		switch e.Key {
		case "start-x":
			cfg.StartX, err = lengthValue(e)
		case "start-y":
			cfg.StartY, err = lengthValue(e)
		case "space-x":
			cfg.SpaceX, err = lengthValue(e)
		case "space-y":
			cfg.SpaceY, err = lengthValue(e)
		case "empty-row-height":
			cfg.EmptyRowHeight, err = lengthValue(e)
		case "wrap-text":
			cfg.WrapText, err = boolValue(e)
		case "add-blank-lines":
			cfg.AddBlankLines, err = boolValue(e)
		case "max-char-width":
			cfg.MaxCharWidth, err = intValue(e)
		case "empty-rows":
			var s string
			s, err = wordValue(e)
			cfg.EmptyRows = layout.EmptyRowPolicy(s)
		case "id-template":
			if e.Value.Kind() != "string" {
				err = kindError(e, "string")
			}
			cfg.IDTemplate = e.Value.Text()
		default:
			err = errs.InvalidConfiguration("settings", e.Key, "%s: 未知的 layout 设置项", e.Pos)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func applyStyle(st *layout.Style, b *dsl.Block) error {
	for _, e := range b.Entries {
		v := e.Value.Text()
		switch e.Key {
		case "size":
			st.Size = v
		case "color":
			st.Color = v
		case "font":
			st.Font = v
		case "align", "text-align":
			st.Align = v
		default:
			return errs.InvalidConfiguration("settings", e.Key, "%s: 未知的 style 设置项", e.Pos)
		}
	}
	return nil
}

func lengthValue(e *dsl.Entry) (float64, error) {
	if e.Value.Kind() != "number" {
		return 0, kindError(e, "number")
	}
	l, err := layout.ParseLength(e.Value.Text())
	if err != nil {
		return 0, errs.InvalidConfiguration("settings", e.Key, "%s: %v", e.Pos, err)
	}
	return l.ToPX(), nil
}

func intValue(e *dsl.Entry) (int, error) {
	if e.Value.Kind() != "number" {
		return 0, kindError(e, "integer")
	}
	n, err := strconv.Atoi(e.Value.Text())
	if err != nil {
		return 0, errs.InvalidConfiguration("settings", e.Key, "%s: 需要整数，得到 %q", e.Pos, e.Value.Text())
	}
	return n, nil
}

func boolValue(e *dsl.Entry) (bool, error) {
	if e.Value.Kind() != "identifier" {
		return false, kindError(e, "true/false")
	}
	b, err := strconv.ParseBool(e.Value.Text())
	if err != nil {
		return false, errs.InvalidConfiguration("settings", e.Key, "%s: 需要 true/false，得到 %q", e.Pos, e.Value.Text())
	}
	return b, nil
}

func wordValue(e *dsl.Entry) (string, error) {
	switch e.Value.Kind() {
	case "identifier", "string":
		return e.Value.Text(), nil
	default:
		return "", kindError(e, "identifier")
	}
}

func kindError(e *dsl.Entry, want string) error {
	return errs.InvalidConfiguration("settings", e.Key, "%s: 需要 %s，得到 %s %q", e.Pos, want, e.Value.Kind(), e.Value.Text())
}

// fileConfig 是 viper 文件的顶层结构。
type fileConfig struct {
	Layout layout.Config `mapstructure:"layout"`
	Style  layout.Style  `mapstructure:"style"`
}

func loadViper(path string) (layout.Config, error) {
	v := viper.New()
	setDefaults(v, layout.DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return layout.Config{}, fmt.Errorf("读取设置文件失败: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc, viper.DecodeHook(lengthHook), rejectUnknownKeys); err != nil {
		return layout.Config{}, errs.InvalidConfiguration("settings", "", "解析设置失败: %v", err)
	}
	cfg := fc.Layout
	cfg.Style = fc.Style
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

// rejectUnknownKeys 让文件中拼错或不存在的键报错，与 DSL 路径的行为一致。
func rejectUnknownKeys(c *mapstructure.DecoderConfig) {
	c.ErrorUnused = true
}

// setDefaults 注册全部键，AutomaticEnv 只对已知键生效。
func setDefaults(v *viper.Viper, cfg layout.Config) {
	v.SetDefault("layout.start_x", cfg.StartX)
	v.SetDefault("layout.start_y", cfg.StartY)
	v.SetDefault("layout.space_x", cfg.SpaceX)
	v.SetDefault("layout.space_y", cfg.SpaceY)
	v.SetDefault("layout.wrap_text", cfg.WrapText)
	v.SetDefault("layout.max_char_width", cfg.MaxCharWidth)
	v.SetDefault("layout.add_blank_lines", cfg.AddBlankLines)
	v.SetDefault("layout.empty_rows", string(cfg.EmptyRows))
	v.SetDefault("layout.empty_row_height", cfg.EmptyRowHeight)
	v.SetDefault("layout.id_template", cfg.IDTemplate)
	v.SetDefault("style.size", cfg.Style.Size)
	v.SetDefault("style.color", cfg.Style.Color)
	v.SetDefault("style.font", cfg.Style.Font)
	v.SetDefault("style.align", cfg.Style.Align)
}

// lengthHook 允许数值字段写成带单位的字符串（"35px"、"1cm"），并兼容普通数字与布尔字符串。
func lengthHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	switch to.Kind() {
	case reflect.Float64:
		l, err := layout.ParseLength(s)
		if err != nil {
			return nil, fmt.Errorf("无效的长度 %q", s)
		}
		return l.ToPX(), nil
	case reflect.Int:
		return strconv.Atoi(s)
	case reflect.Bool:
		return strconv.ParseBool(s)
	}
	return data, nil
}

var (
	_ mapstructure.DecodeHookFuncType = lengthHook
	_ viper.DecoderConfigOption       = rejectUnknownKeys
)
