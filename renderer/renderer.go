package renderer

import "github.com/ByLCY/tltxt/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误；部分结果（测量失败后）同样可以渲染。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
