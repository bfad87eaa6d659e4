// Package errs 定义 tltxt 各阶段共享的错误分类。
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 区分错误来源，调用方据此决定如何报告。
type Kind int

const (
	KindUnknown Kind = iota
	KindHostUnavailable
	KindInputUnavailable
	KindMeasurementFailure
	KindInvalidConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindHostUnavailable:
		return "HostUnavailable"
	case KindInputUnavailable:
		return "InputUnavailable"
	case KindMeasurementFailure:
		return "MeasurementFailure"
	case KindInvalidConfiguration:
		return "InvalidConfiguration"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrHostUnavailable      = &Error{Kind: KindHostUnavailable}
	ErrInputUnavailable     = &Error{Kind: KindInputUnavailable}
	ErrMeasurementFailure   = &Error{Kind: KindMeasurementFailure}
	ErrInvalidConfiguration = &Error{Kind: KindInvalidConfiguration}
)

// Error 携带足够的定位信息（token 序号、段落/行/词位置、配置字段）。
// 位置字段为 -1 表示不适用。
type Error struct {
	Kind      Kind
	Op        string
	Field     string
	Token     int
	Paragraph int
	Line      int
	Word      int
	ID        string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&b, " field=%s", e.Field)
	}
	if e.Kind == KindMeasurementFailure {
		fmt.Fprintf(&b, " token=%d paragraph=%d line=%d word=%d", e.Token, e.Paragraph, e.Line, e.Word)
		if e.ID != "" {
			fmt.Fprintf(&b, " id=%s", e.ID)
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels compare by kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HostUnavailable 表示 shape host 不存在或尚未初始化。
func HostUnavailable(op string, err error) *Error {
	return &Error{Kind: KindHostUnavailable, Op: op, Err: err, Token: -1, Paragraph: -1, Line: -1, Word: -1}
}

// InputUnavailable 表示输入读取失败或不是文本。
func InputUnavailable(op string, err error) *Error {
	return &Error{Kind: KindInputUnavailable, Op: op, Err: err, Token: -1, Paragraph: -1, Line: -1, Word: -1}
}

// InvalidConfiguration 指出出错的配置字段。
func InvalidConfiguration(op, field, format string, args ...any) *Error {
	return &Error{
		Kind:      KindInvalidConfiguration,
		Op:        op,
		Field:     field,
		Err:       fmt.Errorf(format, args...),
		Token:     -1,
		Paragraph: -1,
		Line:      -1,
		Word:      -1,
	}
}

// KindOf 返回错误链中第一个 *Error 的 Kind。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
