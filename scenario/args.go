package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/papyrus-scale/binding"
	"github.com/ByLCY/papyrus-scale/breakpoint"
	"github.com/ByLCY/papyrus-scale/dsl"
	"github.com/ByLCY/papyrus-scale/scale"
)

// outcome 是 resolve 候选值的惰性求值结果。
type outcome struct {
	value    float64
	category breakpoint.Category
	err      error
}

// evalResolve 支持两种写法：
//
//	pad resolve phone 8 tablet widthScale(12)
//	pad resolve {
//	  phone: 8
//	  tablet: widthScale(12)
//	}
func evalResolve(engine *scale.Engine, table *breakpoint.Table, cmd *dsl.Command, data any, q Query) (Query, error) {
	q.Kind = scale.KindNumber.String()
	groups, err := candidateGroups(cmd)
	if err != nil {
		return q, err
	}

	var cands breakpoint.Candidates[outcome]
	for _, g := range groups {
		tokens := g.tokens
		cat := g.category
		cands = cands.Set(cat, func() outcome {
			v, err := evalValue(engine, tokens, data)
			return outcome{value: v, category: cat, err: err}
		})
		q.Cands = append(q.Cands, Candidate{Category: cat.String(), Expr: joinTokens(tokens)})
	}

	snap, err := engine.Snapshot()
	if err != nil {
		q.Error = err.Error()
		return q, nil
	}
	width := 0.0
	if snap != nil {
		width = snap.Viewport().Width
	}
	out, err := breakpoint.ResolveWith(table, width, cands)
	if err != nil {
		return q, err
	}
	if out.err != nil {
		if errors.Is(out.err, scale.ErrUninitialized) {
			q.Error = out.err.Error()
			return q, nil
		}
		return q, fmt.Errorf("%s 候选值: %w", out.category, out.err)
	}
	q.Value = out.value
	q.Picked = out.category.String()
	return q, nil
}

type candidateGroup struct {
	category breakpoint.Category
	tokens   []*dsl.Lexeme
}

func candidateGroups(cmd *dsl.Command) ([]candidateGroup, error) {
	var groups []candidateGroup
	seen := map[breakpoint.Category]bool{}
	add := func(name string, tokens []*dsl.Lexeme) error {
		cat, err := breakpoint.ParseCategory(name)
		if err != nil {
			return err
		}
		if seen[cat] {
			return fmt.Errorf("类别 %s 重复", cat)
		}
		if len(tokens) == 0 {
			return fmt.Errorf("类别 %s 缺少取值", cat)
		}
		seen[cat] = true
		groups = append(groups, candidateGroup{category: cat, tokens: tokens})
		return nil
	}

	// 参数写法：类别名开启新的一组，直到下一个类别名。
	var current string
	var tokens []*dsl.Lexeme
	for _, lx := range cmd.Args[1:] {
		if lx.Type == "Ident" && isCategory(lx.Value) {
			if current != "" {
				if err := add(current, tokens); err != nil {
					return nil, err
				}
			}
			current, tokens = lx.Value, nil
			continue
		}
		if current == "" {
			return nil, fmt.Errorf("resolve 参数应以类别名开头，遇到 %s", lx.Raw)
		}
		tokens = append(tokens, lx)
	}
	if current != "" {
		if err := add(current, tokens); err != nil {
			return nil, err
		}
	}

	if cmd.Block != nil {
		for _, st := range cmd.Block.Statements {
			if st.Assignment == nil {
				return nil, fmt.Errorf("第 %d 行: resolve 块只接受 类别: 值", st.Command.Pos.Line)
			}
			if err := add(st.Assignment.Key, valueTokens(st.Assignment.Value)); err != nil {
				return nil, err
			}
		}
	}
	return groups, nil
}

func isCategory(name string) bool {
	_, err := breakpoint.ParseCategory(name)
	return err == nil
}

// evalValue 求值单个数字或数值函数调用，例如 8、"${x}"、widthScale(8)。
func evalValue(engine *scale.Engine, tokens []*dsl.Lexeme, data any) (float64, error) {
	if len(tokens) > 0 && tokens[0].Type == "Ident" {
		f, ok := scale.Lookup(tokens[0].Value)
		if !ok {
			return 0, fmt.Errorf("未知函数 %s", tokens[0].Value)
		}
		if f.Kind != scale.KindNumber {
			return 0, fmt.Errorf("%s 不返回数值", f.Name)
		}
		args, err := parseCallArgs(tokens[1:], data)
		if err != nil {
			return 0, err
		}
		res, err := engine.Eval(f.Name, args...)
		if err != nil {
			return 0, err
		}
		return res.Number, nil
	}
	args, err := parseCallArgs(tokens, data)
	if err != nil {
		return 0, err
	}
	if len(args) != 1 {
		return 0, fmt.Errorf("期望一个数值，得到 %q", joinTokens(tokens))
	}
	return args[0], nil
}

// parseCallArgs 把 ( 8 , 0.5 ) 或 8 0.5 这样的记号序列解析为数字，括号与逗号可省略。
func parseCallArgs(tokens []*dsl.Lexeme, data any) ([]float64, error) {
	var args []float64
	negative := false
	for _, lx := range tokens {
		switch {
		case lx.IsSymbol("(") || lx.IsSymbol(")") || lx.IsSymbol(","):
			continue
		case lx.IsSymbol("-"):
			negative = !negative
			continue
		case lx.Type == "Number" || lx.Type == "String":
			v, err := binding.Number(lx.Value, data)
			if err != nil {
				return nil, err
			}
			if negative {
				v = -v
				negative = false
			}
			args = append(args, v)
		default:
			return nil, fmt.Errorf("无法识别的参数 %s", lx.Raw)
		}
	}
	if negative {
		return nil, fmt.Errorf("负号后缺少数字")
	}
	return args, nil
}

func valueTokens(val *dsl.Value) []*dsl.Lexeme {
	switch {
	case val == nil:
		return nil
	case val.Number != nil:
		return []*dsl.Lexeme{{Type: "Number", Value: *val.Number, Raw: *val.Number}}
	case val.String != nil:
		s := string(*val.String)
		return []*dsl.Lexeme{{Type: "String", Value: s, Raw: fmt.Sprintf("%q", s)}}
	case val.Expr != nil:
		return val.Expr.Parts
	}
	return nil
}

func valueNumber(val *dsl.Value, data any) (float64, error) {
	if val == nil {
		return 0, fmt.Errorf("缺少取值")
	}
	if val.Array != nil || val.Object != nil {
		return 0, fmt.Errorf("期望数值")
	}
	args, err := parseCallArgs(valueTokens(val), data)
	if err != nil {
		return 0, err
	}
	if len(args) != 1 {
		return 0, fmt.Errorf("期望一个数值")
	}
	return args[0], nil
}

func valueToString(val *dsl.Value, data any) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return binding.Interpolate(string(*val.String), data)
	case val.Number != nil:
		return *val.Number
	case val.Expr != nil:
		return joinTokens(val.Expr.Parts)
	}
	return ""
}

func joinTokens(tokens []*dsl.Lexeme) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.Raw)
	}
	return strings.Join(parts, " ")
}
