// Package binding 把宿主测量数据（JSON）绑定到场景文件中的 ${path} 占位符。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 占位符可以写默认值：${screen.textScale|1}，路径不存在时使用 | 之后的文本。
// 若既没有值也没有默认值，则保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasFallback := splitFallback(groups[1])
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Unresolved 返回文本中仍未替换的占位符路径。
func Unresolved(text string) []string {
	var out []string
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		path, _, _ := splitFallback(groups[1])
		out = append(out, path)
	}
	return out
}

// Number 先插值再解析为数字；结尾的 % 会被忽略。
func Number(text string, data any) (float64, error) {
	resolved := strings.TrimSpace(Interpolate(text, data))
	if missing := Unresolved(resolved); len(missing) > 0 {
		return 0, fmt.Errorf("数据中缺少 %s", strings.Join(missing, ", "))
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(resolved, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%q 不是数字: %w", resolved, err)
	}
	return f, nil
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 解码后的数据中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	segments := strings.Split(strings.TrimSpace(path), ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func splitFallback(expr string) (path, fallback string, ok bool) {
	if i := strings.IndexByte(expr, '|'); i != -1 {
		return strings.TrimSpace(expr[:i]), strings.TrimSpace(expr[i+1:]), true
	}
	return strings.TrimSpace(expr), "", false
}

// format 对浮点数使用最短表示，避免 fmt.Sprint 对整数值输出 1e+06 之类的形式。
func format(val any) string {
	switch v := val.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
