package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/papyrus-scale/scenario"
)

// debugDocument 是调试 JSON 的顶层结构：求值结果与布局结果并列，layout 可为空。
type debugDocument struct {
	Report *scenario.Report `json:"report"`
	Layout *Result          `json:"layout,omitempty"`
}

// WriteDebugJSON 将求值结果与布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(path string, report *scenario.Report, res *Result) error {
	if report == nil {
		return nil
	}
	data, err := MarshalDebug(report, res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// MarshalDebug 返回缩进后的调试 JSON。
func MarshalDebug(report *scenario.Report, res *Result) ([]byte, error) {
	data, err := json.MarshalIndent(debugDocument{Report: report, Layout: res}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化调试 JSON 失败: %w", err)
	}
	return append(data, '\n'), nil
}
