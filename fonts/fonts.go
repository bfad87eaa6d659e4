package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// builtin 将 font 样式标签（draw/sans/serif/mono）映射到内置字体数据。
var builtin = map[string][]byte{
	"serif": lmroman10regular.TTF,
	"sans":  goregular.TTF,
	"mono":  gomono.TTF,
	"draw":  goitalic.TTF,
}

// Fallback 是未知标签使用的字体。
const Fallback = "sans"

// Load 返回内置字体的字节数据，tag 大小写无关，可带 "builtin:" 前缀。
func Load(tag string) ([]byte, error) {
	name := strings.ToLower(strings.TrimPrefix(tag, "builtin:"))
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", tag)
	}
	return data, nil
}

// Tags 返回所有内置字体标签（已排序）。
func Tags() []string {
	tags := make([]string, 0, len(builtin))
	for k := range builtin {
		tags = append(tags, k)
	}
	sort.Strings(tags)
	return tags
}
