package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/ByLCY/papyrus-scale/dsl"
	"github.com/ByLCY/papyrus-scale/layout"
	"github.com/ByLCY/papyrus-scale/profile"
	"github.com/ByLCY/papyrus-scale/renderer"
	canvasrenderer "github.com/ByLCY/papyrus-scale/renderer/canvas"
	textrenderer "github.com/ByLCY/papyrus-scale/renderer/text"
	"github.com/ByLCY/papyrus-scale/scenario"
	"github.com/ByLCY/papyrus-scale/watcher"
)

// config 汇总命令行参数。
type config struct {
	input    string
	output   string
	format   renderer.Format
	debug    string
	data     any
	device   string
	profiles string
	page     string
	fontSize string
	lineHt   string
	color    bool
}

func main() {
	input := flag.String("in", "examples/pixel.scenario", "场景 DSL 文件路径")
	output := flag.String("out", "", "输出路径，默认 output/<场景文件名>.<格式>；text/json 可用 - 表示标准输出")
	format := flag.String("format", "pdf", "输出格式：pdf、svg、text、json")
	debug := flag.String("debug", "", "求值与布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据，@path 表示从文件读取")
	device := flag.String("device", "", "使用设备配置替代场景中的 device 段")
	profiles := flag.String("profiles", "", "设备配置文件（.yaml/.yml/.toml），与内置设备合并")
	listDevices := flag.Bool("list-devices", false, "列出可用设备配置后退出")
	page := flag.String("page", "", "预览页尺寸：a4、a4-landscape、letter、letter-landscape")
	fontSize := flag.String("font-size", "", "预览页正文字号，例如 9pt")
	lineHeight := flag.String("line-height", "", "预览页行高：倍数（如 1.5）或固定长度（如 5mm）")
	color := flag.String("color", "auto", "text 输出着色：auto、always、never")
	watch := flag.Bool("watch", false, "场景或设备配置变化时重新生成")
	flag.Parse()

	if *listDevices {
		if err := printDevices(os.Stdout, *profiles); err != nil {
			log.Fatalf("列出设备失败: %v", err)
		}
		return
	}

	f, err := renderer.ParseFormat(*format)
	if err != nil {
		log.Fatalf("%v", err)
	}
	data, err := loadData(*dataJSON)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}
	useColor, err := colorEnabled(*color, *output)
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg := config{
		input:    *input,
		output:   defaultOutput(*output, *input, f),
		format:   f,
		debug:    *debug,
		data:     data,
		device:   *device,
		profiles: *profiles,
		page:     *page,
		fontSize: *fontSize,
		lineHt:   *lineHeight,
		color:    useColor,
	}

	if *watch {
		if err := watchAndRun(cfg); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("监听失败: %v", err)
		}
		return
	}

	report, err := run(cfg)
	if err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	if cfg.output != "-" {
		fmt.Printf("已生成 %s：%s（%d 条查询，%d 条失败）\n", strings.ToUpper(string(cfg.format)), cfg.output, len(report.Queries), report.Failed())
	}
}

// run 串联解析、求值、布局与渲染。
func run(cfg config) (*scenario.Report, error) {
	file, err := os.Open(cfg.input)
	if err != nil {
		return nil, fmt.Errorf("无法打开场景文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.ParseFile(cfg.input, file)
	if err != nil {
		return nil, fmt.Errorf("解析场景失败: %w", err)
	}

	opts, err := deviceOptions(cfg.device, cfg.profiles)
	if err != nil {
		return nil, err
	}
	report, err := scenario.Evaluate(doc, cfg.data, opts)
	if err != nil {
		return nil, fmt.Errorf("场景求值失败: %w", err)
	}

	var out []byte
	var result *layout.Result
	switch {
	case cfg.format.NeedsLayout():
		r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			BaseDir: filepath.Dir(cfg.input),
			Format:  cfg.format,
		})
		result, err = layout.Build(report, layout.BuildOptions{
			Typesetter: r,
			Page:       cfg.page,
			FontSize:   cfg.fontSize,
			LineHeight: cfg.lineHt,
		})
		if err != nil {
			return nil, fmt.Errorf("布局计算失败: %w", err)
		}
		if out, err = r.Render(result); err != nil {
			return nil, fmt.Errorf("渲染 %s 失败: %w", cfg.format, err)
		}
	case cfg.format == renderer.FormatText:
		var tr renderer.ReportRenderer = textrenderer.New(textrenderer.Options{Color: cfg.color, Output: os.Stdout})
		if out, err = tr.RenderReport(report); err != nil {
			return nil, fmt.Errorf("渲染文本失败: %w", err)
		}
	case cfg.format == renderer.FormatJSON:
		if out, err = json.MarshalIndent(report, "", "  "); err != nil {
			return nil, fmt.Errorf("编码 JSON 失败: %w", err)
		}
		out = append(out, '\n')
	}

	if cfg.debug != "" {
		if err := layout.WriteDebugJSON(cfg.debug, report, result); err != nil {
			return nil, fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	if err := writeOutput(cfg.output, out); err != nil {
		return nil, err
	}
	return report, nil
}

// deviceOptions 把 -device 对应的设备配置转换为求值选项。
func deviceOptions(name, profilesPath string) (scenario.Options, error) {
	if name == "" {
		return scenario.Options{}, nil
	}
	set, err := loadProfiles(profilesPath)
	if err != nil {
		return scenario.Options{}, err
	}
	p, err := set.Get(name)
	if err != nil {
		return scenario.Options{}, err
	}
	m := p.Measurement()
	return scenario.Options{
		Device:     &m,
		DeviceName: p.Name,
		Configure:  p.ConfigureOptions(),
	}, nil
}

func loadProfiles(path string) (*profile.Set, error) {
	set := profile.Builtin()
	if path == "" {
		return set, nil
	}
	custom, err := profile.Load(path)
	if err != nil {
		return nil, err
	}
	return set.Merge(custom), nil
}

func printDevices(w io.Writer, profilesPath string) error {
	set, err := loadProfiles(profilesPath)
	if err != nil {
		return err
	}
	out, err := set.Encode(profile.YAML)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// loadData 解析 -data；以 @ 开头时读取对应文件。
func loadData(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	content := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
		}
		content = b
	}
	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func defaultOutput(out, input string, f renderer.Format) string {
	if out != "" {
		return out
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join("output", name+f.Extension())
}

func colorEnabled(mode, output string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return output == "-" && isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == "", nil
	}
	return false, fmt.Errorf("未知的 -color 取值 %q（可选 auto、always、never）", mode)
}

func writeOutput(path string, content []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(content)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

// watchAndRun 先生成一次，之后在场景文件或设备配置变化时重新生成，直到收到中断信号。
func watchAndRun(cfg config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New([]string{cfg.input, cfg.profiles}, watcher.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	rerun := func(reason string) {
		report, err := run(cfg)
		if err != nil {
			log.Printf("%s: 生成失败: %v", reason, err)
			return
		}
		if cfg.output != "-" {
			log.Printf("%s: 已生成 %s（%d 条查询，%d 条失败）", reason, cfg.output, len(report.Queries), report.Failed())
		}
	}

	rerun("首次生成")
	log.Printf("正在监听 %s，按 Ctrl+C 退出", strings.Join(w.Files(), ", "))
	return w.Run(ctx, func(path string) {
		rerun(filepath.Base(path) + " 已变化")
	}, func(err error) {
		log.Printf("监听错误: %v", err)
	})
}
