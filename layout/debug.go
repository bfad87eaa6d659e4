package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteDebugJSON 把一次运行的行、token 与外接矩形写成缩进 JSON。
// 测量失败后的部分结果同样可以写出，用于定位出错的 token。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return fmt.Errorf("布局结果为空")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false) // 保留 id 中的 "<" 等字符原样
	if err := enc.Encode(res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
