// Package scenario 对场景文件求值：用 device 段配置缩放引擎，再逐条执行 queries。
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/papyrus-scale/breakpoint"
	"github.com/ByLCY/papyrus-scale/dsl"
	"github.com/ByLCY/papyrus-scale/scale"
)

// resolveFunc 是 queries 中按断点取值的伪函数名。
const resolveFunc = "resolve"

// Options 配置求值阶段的外部输入，例如 -device 指定的设备。
type Options struct {
	// Device 非空时替代场景中的 device 段。
	Device *scale.Measurement
	// DeviceName 仅用于报告展示。
	DeviceName string
	// Configure 追加在场景 options 之后，优先级更高。
	Configure []scale.ConfigureOption
}

// settings 是从 options 段解析出的引擎与 Configure 选项。
type settings struct {
	engine    []scale.Option
	configure []scale.ConfigureOption
	table     *breakpoint.Table
	mode      scale.UninitializedMode
	units     scale.PhysicalUnits
}

// Evaluate 根据 DSL AST 与绑定数据生成 Report。
func Evaluate(doc *dsl.Document, data any, opts Options) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("场景为空")
	}

	set, err := parseOptions(doc.Options(), data)
	if err != nil {
		return nil, err
	}
	engine := scale.New(set.engine...)

	report := &Report{
		Scenario: doc.Name,
		Version:  doc.Version,
		Source:   doc.Name,
		Table:    set.table.Name(),
		Mode:     set.mode.String(),
		Units:    set.units.String(),
		Bands:    set.table.Bands(),
	}

	measurement, ok, err := resolveDevice(doc.Device(), data, opts)
	if err != nil {
		return nil, err
	}
	if opts.DeviceName != "" {
		report.Source = opts.DeviceName
	}
	if ok {
		configure := append(append([]scale.ConfigureOption{}, set.configure...), opts.Configure...)
		snap, err := engine.Configure(measurement, configure...)
		if err != nil {
			return nil, fmt.Errorf("配置缩放引擎失败: %w", err)
		}
		fillSnapshot(report, snap)
	}

	for _, st := range doc.Queries() {
		if st.Command == nil {
			pos := st.Assignment.Pos
			return nil, fmt.Errorf("第 %d 行: queries 中应写作 `名称 函数 参数...`，而不是 %s:", pos.Line, st.Assignment.Key)
		}
		q, err := evalQuery(engine, set.table, st.Command, data)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行查询 %s: %w", st.Command.Pos.Line, st.Command.Name, err)
		}
		report.Queries = append(report.Queries, q)
	}
	return report, nil
}

func fillSnapshot(report *Report, snap *scale.Snapshot) {
	vp := snap.Viewport()
	base := snap.Base()
	report.Configured = true
	report.Viewport = &vp
	report.Base = &base
	report.PPI = snap.PPI()
	report.Category = snap.Category().String()
	report.Flags = make(map[string]bool)
	for _, f := range scale.Funcs() {
		if f.Kind != scale.KindBool {
			continue
		}
		res, err := f.Apply(snap)
		if err == nil {
			report.Flags[f.Name] = res.Bool
		}
	}
}

// resolveDevice 返回宿主测量值；ok 为 false 表示场景未提供设备，引擎保持未配置状态。
func resolveDevice(section *dsl.DeviceSection, data any, opts Options) (scale.Measurement, bool, error) {
	if opts.Device != nil {
		return *opts.Device, true, nil
	}
	if section == nil || section.Block == nil {
		return scale.Measurement{}, false, nil
	}
	var m scale.Measurement
	seen := map[string]bool{}
	for _, st := range section.Block.Statements {
		if st.Assignment == nil {
			return m, false, fmt.Errorf("第 %d 行: device 段只接受 key: value", st.Command.Pos.Line)
		}
		key := st.Assignment.Key
		v, err := valueNumber(st.Assignment.Value, data)
		if err != nil {
			return m, false, fmt.Errorf("第 %d 行 device.%s: %w", st.Assignment.Pos.Line, key, err)
		}
		switch key {
		case "width":
			m.Width = v
		case "height":
			m.Height = v
		case "dpr", "devicePixelRatio":
			m.DevicePixelRatio = v
		case "textScale", "textScaleMultiplier":
			m.TextScale = v
		default:
			return m, false, fmt.Errorf("第 %d 行: 未知的 device 字段 %s", st.Assignment.Pos.Line, key)
		}
		seen[key] = true
	}
	if !seen["width"] || !seen["height"] {
		return m, false, fmt.Errorf("device 段至少需要 width 与 height")
	}
	if m.DevicePixelRatio == 0 {
		m.DevicePixelRatio = 1
	}
	return m, true, nil
}

func parseOptions(statements []*dsl.Statement, data any) (settings, error) {
	set := settings{table: breakpoint.Full}
	var baseAt *dsl.Assignment
	for _, st := range statements {
		if st.Assignment == nil {
			return set, fmt.Errorf("第 %d 行: options 段只接受 key: value", st.Command.Pos.Line)
		}
		a := st.Assignment
		text := valueToString(a.Value, data)
		var err error
		switch a.Key {
		case "table":
			set.table, err = breakpoint.LookupTable(text)
			if err == nil {
				set.engine = append(set.engine, scale.WithTable(set.table))
			}
		case "uninitialized":
			set.mode, err = scale.ParseUninitializedMode(text)
			set.engine = append(set.engine, scale.WithUninitialized(set.mode))
		case "units":
			set.units, err = scale.ParsePhysicalUnits(text)
			set.engine = append(set.engine, scale.WithPhysicalUnits(set.units))
		case "systemTextScale":
			var enabled bool
			enabled, err = parseBool(text)
			set.configure = append(set.configure, scale.WithSystemTextScale(enabled))
		case "base":
			// 类别名依赖最终的 table，循环结束后再解析。
			baseAt = a
		default:
			err = fmt.Errorf("未知选项")
		}
		if err != nil {
			return set, fmt.Errorf("第 %d 行 options.%s: %w", a.Pos.Line, a.Key, err)
		}
	}
	if baseAt != nil {
		base, err := parseBase(baseAt.Value, data, set.table)
		if err != nil {
			return set, fmt.Errorf("第 %d 行 options.%s: %w", baseAt.Pos.Line, baseAt.Key, err)
		}
		set.configure = append(set.configure, scale.WithBaseSize(base))
	}
	return set, nil
}

// parseBase 接受 [宽, 高] 或类别名（使用 options 中最终选定的断点表的默认尺寸）。
func parseBase(val *dsl.Value, data any, table *breakpoint.Table) (breakpoint.Size, error) {
	if val != nil && val.Array != nil {
		if len(val.Array.Values) != 2 {
			return breakpoint.Size{}, fmt.Errorf("base 需要两个数 [宽, 高]")
		}
		w, err := valueNumber(val.Array.Values[0], data)
		if err != nil {
			return breakpoint.Size{}, err
		}
		h, err := valueNumber(val.Array.Values[1], data)
		if err != nil {
			return breakpoint.Size{}, err
		}
		return breakpoint.Size{Width: w, Height: h}, nil
	}
	cat, err := breakpoint.ParseCategory(valueToString(val, data))
	if err != nil {
		return breakpoint.Size{}, err
	}
	size, ok := table.BaseSize(cat)
	if !ok {
		return breakpoint.Size{}, fmt.Errorf("断点表 %s 中没有类别 %s", table.Name(), cat)
	}
	return size, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q 不是布尔值", s)
}

func evalQuery(engine *scale.Engine, table *breakpoint.Table, cmd *dsl.Command, data any) (Query, error) {
	q := Query{Name: cmd.Name, Line: cmd.Pos.Line}
	if len(cmd.Args) == 0 {
		return q, fmt.Errorf("缺少函数名")
	}
	fn := cmd.Args[0].Value
	q.Func = fn
	if fn == resolveFunc {
		return evalResolve(engine, table, cmd, data, q)
	}

	args, err := parseCallArgs(cmd.Args[1:], data)
	if err != nil {
		return q, err
	}
	q.Args = args
	f, ok := scale.Lookup(fn)
	if !ok {
		return q, fmt.Errorf("未知函数 %s", fn)
	}
	q.Kind = f.Kind.String()
	res, err := engine.Eval(fn, args...)
	if err != nil {
		if errors.Is(err, scale.ErrUninitialized) {
			q.Error = err.Error()
			return q, nil
		}
		return q, err
	}
	q.Value, q.Bool = res.Number, res.Bool
	return q, nil
}
