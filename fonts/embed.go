package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
)

// 内置字体名称，供 layout.FontResource.Src 以 "embed:<name>" 形式引用。
const (
	Regular = "lmroman10-regular"
	Bold    = "lmroman10-bold"
	Mono    = "lmmono10-regular"
)

var builtin = map[string][]byte{
	Regular: lmroman10regular.TTF,
	Bold:    lmroman10bold.TTF,
	Mono:    lmmono10regular.TTF,
}

// Load 返回内置字体的字节数据，path 可写为 "embed:lmroman10-regular" 或直接 "lmroman10-regular"。
func Load(path string) ([]byte, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(path, "embed:"), ".ttf")
	data, ok := builtin[name]
	if !ok || len(data) == 0 {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 可选 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回全部内置字体名称。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
