package scenario

// 该文件定义场景求值结果，供终端表格、预览页布局与调试 JSON 共用。

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/papyrus-scale/breakpoint"
	"github.com/ByLCY/papyrus-scale/scale"
)

// Report 保存一次场景求值的全部输出。
type Report struct {
	Scenario   string            `json:"scenario"`
	Version    string            `json:"version,omitempty"`
	Source     string            `json:"source,omitempty"` // scenario 或 device 名称
	Table      string            `json:"table"`
	Mode       string            `json:"uninitialized"`
	Units      string            `json:"units"`
	Configured bool              `json:"configured"`
	Viewport   *scale.Viewport   `json:"viewport,omitempty"`
	Category   string            `json:"category,omitempty"`
	Base       *breakpoint.Size  `json:"base,omitempty"`
	PPI        float64           `json:"ppi,omitempty"`
	Flags      map[string]bool   `json:"flags,omitempty"`
	Bands      []breakpoint.Band `json:"bands"`
	Queries    []Query           `json:"queries"`
}

// Query 记录单条查询及其结果。Error 非空时 Value/Bool 无意义。
type Query struct {
	Name   string      `json:"name"`
	Func   string      `json:"func"`
	Args   []float64   `json:"args,omitempty"`
	Kind   string      `json:"kind"`
	Value  float64     `json:"value"`
	Bool   bool        `json:"bool,omitempty"`
	Picked string      `json:"picked,omitempty"` // resolve 命中的类别
	Error  string      `json:"error,omitempty"`
	Line   int         `json:"line,omitempty"`
	Cands  []Candidate `json:"candidates,omitempty"`
}

// Candidate 是 resolve 查询中某个类别提供的值。
type Candidate struct {
	Category string `json:"category"`
	Expr     string `json:"expr"`
}

// Failed 返回求值失败的查询数量。
func (r *Report) Failed() int {
	n := 0
	for _, q := range r.Queries {
		if q.Error != "" {
			n++
		}
	}
	return n
}

// Call 返回查询的调用形式，例如 widthScale(8) 或 resolve phone: 8, large: 24。
func (q Query) Call() string {
	if len(q.Cands) > 0 {
		parts := make([]string, 0, len(q.Cands))
		for _, c := range q.Cands {
			parts = append(parts, c.Category+": "+c.Expr)
		}
		return q.Func + " " + strings.Join(parts, ", ")
	}
	if len(q.Args) == 0 {
		return q.Func
	}
	args := make([]string, 0, len(q.Args))
	for _, a := range q.Args {
		args = append(args, FormatNumber(a))
	}
	return q.Func + "(" + strings.Join(args, ", ") + ")"
}

// Result 返回查询结果的文本形式，失败时为 "-"。
func (q Query) Result() string {
	switch {
	case q.Error != "":
		return "-"
	case q.Kind == "bool":
		return strconv.FormatBool(q.Bool)
	}
	return FormatNumber(q.Value)
}

// Note 返回错误信息或 resolve 命中的类别。
func (q Query) Note() string {
	if q.Error == "" && q.Picked != "" {
		return "picked " + q.Picked
	}
	return q.Error
}

// FormatNumber 保留至多四位小数并去掉多余的零。
func FormatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
