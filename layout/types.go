package layout

// 该文件定义布局结果与 shape 描述，供布局计算、host 与调试 JSON 共用。

// Box 是 host 实际报告的外接矩形（canvas 坐标，px）。
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Union 返回同时覆盖 b 与 o 的矩形。零尺寸的 Box 同样参与合并。
func (b Box) Union(o Box) Box {
	return Box{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Style 是原样透传给每个 token 的样式标签，布局阶段不解释它们。
type Style struct {
	Size  string `json:"size" mapstructure:"size"`
	Color string `json:"color" mapstructure:"color"`
	Font  string `json:"font" mapstructure:"font"`
	Align string `json:"textAlign" mapstructure:"align"`
}

// ShapeKindText 是本模块创建的唯一 shape 类型。
const ShapeKindText = "text"

// Shape 是交给 host 的创建请求。
type Shape struct {
	Kind  string  `json:"type"`
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Style Style   `json:"props"`
}

// Row 是布局阶段的一行输入：若干词以及所属段落。
type Row struct {
	Paragraph int      `json:"paragraph"`
	Words     []string `json:"words"`
}

// Token 表示一个已放置的词：左上角坐标、样式以及 host 回报的外接矩形。
// Line 为全局行号，Word 为行内序号，Index 为全局 token 序号。
type Token struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Style     Style   `json:"style"`
	Paragraph int     `json:"paragraph"`
	Line      int     `json:"line"`
	Word      int     `json:"word"`
	Index     int     `json:"index"`
	Box       Box     `json:"box"`
}

// Result 保存一次布局运行的全部输出。失败时仍包含失败之前已放置的 token。
type Result struct {
	Run    string  `json:"run"`
	Rows   []Row   `json:"rows"`
	Tokens []Token `json:"tokens"`
	Bounds Box     `json:"bounds"`
}
