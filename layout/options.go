package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	// Page 为纸张预设名（a4、a4-landscape、letter、letter-landscape），为空时使用 a4-landscape。
	Page string
	// FontSize 为正文字号，带单位，例如 "9pt"、"3.2mm"；为空时使用 9pt。
	FontSize string
	// LineHeight 为行高：纯数字表示字号的倍数（如 "1.5"），带单位表示固定行高（如 "5mm"、"14pt"）；为空时使用 1.3 倍。
	LineHeight string
	// Author 写入文档元信息。
	Author string
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}
