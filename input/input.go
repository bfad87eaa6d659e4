// Package input 提供原始文档文本（替代浏览器剪贴板）。读取失败或内容
// 不是文本时返回 InputUnavailable，此时不进行任何布局。
package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ByLCY/tltxt/errs"
)

// Provider 返回纯文本或失败。
type Provider interface {
	ReadText(ctx context.Context) (string, error)
}

// File reads the document from a path.
type File string

func (f File) ReadText(ctx context.Context) (string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", errs.InputUnavailable("input", err)
	}
	return Decode(data)
}

// Reader reads the whole document from r (for example os.Stdin).
type Reader struct {
	R io.Reader
}

func (r Reader) ReadText(ctx context.Context) (string, error) {
	if r.R == nil {
		return "", errs.InputUnavailable("input", errors.New("no reader"))
	}
	data, err := io.ReadAll(r.R)
	if err != nil {
		return "", errs.InputUnavailable("input", err)
	}
	if err := ctx.Err(); err != nil {
		return "", errs.InputUnavailable("input", err)
	}
	return Decode(data)
}

// String is an in-memory document.
type String string

func (s String) ReadText(ctx context.Context) (string, error) { return Decode([]byte(s)) }

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Decode 识别 UTF-16 BOM 并转为 UTF-8，去掉 UTF-8 BOM，统一换行为 "\n"。
// 非法 UTF-8 或含 NUL 的内容视为非文本。
func Decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, bomUTF16BE) || bytes.HasPrefix(data, bomUTF16LE) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", errs.InputUnavailable("input", fmt.Errorf("UTF-16 解码失败: %w", err))
		}
		data = out
	} else if !utf8.Valid(data) {
		return "", errs.InputUnavailable("input", errors.New("content is not valid UTF-8 text"))
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	if bytes.IndexByte(data, 0) >= 0 {
		return "", errs.InputUnavailable("input", errors.New("content looks binary (NUL byte)"))
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
