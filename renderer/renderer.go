package renderer

import (
	"fmt"
	"strings"

	"github.com/ByLCY/papyrus-scale/layout"
	"github.com/ByLCY/papyrus-scale/scenario"
)

// Renderer 将预览页布局结果输出为最终文件，例如 PDF 或 SVG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// ReportRenderer 直接输出场景求值结果，不经过布局阶段，例如终端表格。
type ReportRenderer interface {
	RenderReport(report *scenario.Report) ([]byte, error)
}

// Format 表示输出格式。
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatSVG  Format = "svg"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat 解析 -format 参数，忽略大小写。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatSVG, FormatText, FormatJSON:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("未知的输出格式 %q（可选 pdf、svg、text、json）", s)
}

// NeedsLayout 报告该格式是否需要布局阶段。
func (f Format) NeedsLayout() bool { return f == FormatPDF || f == FormatSVG }

// Extension 返回输出文件的扩展名。
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}
