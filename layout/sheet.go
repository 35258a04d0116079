package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ByLCY/papyrus-scale/fonts"
	"github.com/ByLCY/papyrus-scale/scenario"
)

const (
	blockSpacing  = 4.0
	cellPadding   = 1.2
	rulerHeight   = 9.0
	markerRadius  = 1.2
	previewHeight = 60.0
	flagRadius    = 1.1
)

var pagePresets = map[string][2]float64{
	"a4":               {210, 297},
	"a4-landscape":     {297, 210},
	"letter":           {215.9, 279.4},
	"letter-landscape": {279.4, 215.9},
}

var (
	inkColor    = Color{R: 30, G: 30, B: 30}
	mutedColor  = Color{R: 110, G: 110, B: 110}
	borderColor = Color{R: 200, G: 200, B: 200}
	markerColor = Color{R: 220, G: 50, B: 47}
	paperColor  = Color{R: 245, G: 247, B: 250}
	bandPalette = []Color{
		{R: 222, G: 235, B: 247},
		{R: 198, G: 219, B: 239},
		{R: 158, G: 202, B: 225},
		{R: 107, G: 174, B: 214},
		{R: 66, G: 146, B: 198},
	}
	queryColumns = []struct {
		title  string
		weight float64
	}{{"name", 2}, {"call", 4}, {"kind", 1.2}, {"result", 2}, {"note", 4}}
)

type textStyle struct {
	font  string
	size  float64 // mm
	color Color
	align string
}

// Build 根据场景求值结果生成预览页：断点标尺、视口与基准尺寸对比、布尔查询以及查询结果表。
func Build(report *scenario.Report, opts BuildOptions) (*Result, error) {
	if report == nil {
		return nil, fmt.Errorf("场景结果为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	width, height, err := resolvePageSize(opts.Page)
	if err != nil {
		return nil, err
	}
	size := Length{Value: 9, Unit: UnitPT}
	if opts.FontSize != "" {
		size = ParseRawLengthStr(opts.FontSize)
		if size.Unit == UnitNone || size.Value <= 0 {
			return nil, fmt.Errorf("无效的字号 %q，需要带单位，例如 9pt", opts.FontSize)
		}
	}
	body := size.ToMM()
	lineHeight, err := parseLineHeight(opts.LineHeight)
	if err != nil {
		return nil, err
	}

	margin := Margin{Top: 12, Right: 12, Bottom: 12, Left: 12}
	b := &sheetBuilder{
		report: report,
		ts:     opts.Typesetter,
		res:    defaultResources(),
		pc:     newPageCollector(width, height, margin),
		left:   margin.Left,
		width:  width - margin.Left - margin.Right,
		lh:     lineHeight,
		body:   textStyle{font: "Body", size: body, color: inkColor},
		small:  textStyle{font: "Body", size: body * 0.85, color: mutedColor},
		head:   textStyle{font: "Bold", size: body * 1.2, color: inkColor},
		title:  textStyle{font: "Bold", size: body * 1.8, color: inkColor},
	}
	b.cursorY = b.pc.contentTop()

	steps := []func() error{b.header, b.ruler, b.viewport, b.queries}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	return &Result{
		Pages:     b.pc.pages(),
		Resources: b.res,
		Meta:      collectMeta(report, opts.Author),
	}, nil
}

// parseLineHeight 解析行高：无单位为倍数，带单位为固定长度。
func parseLineHeight(raw string) (LineHeightSpec, error) {
	if strings.TrimSpace(raw) == "" {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: 1.3}, nil
	}
	l := ParseRawLengthStr(raw)
	if l.IsZero() || l.Value < 0 {
		return LineHeightSpec{}, fmt.Errorf("无效的行高 %q，例如 1.5 或 5mm", raw)
	}
	if l.Unit == UnitNone {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: l.Value}, nil
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, nil
}

func defaultResources() ResourceSet {
	return ResourceSet{Fonts: map[string]FontResource{
		"Body": {Name: "Body", Src: "embed:" + fonts.Regular, Family: "LatinModern"},
		"Bold": {Name: "Bold", Src: "embed:" + fonts.Bold, Style: "bold", Family: "LatinModernBold"},
		"Mono": {Name: "Mono", Src: "embed:" + fonts.Mono, Family: "LatinModernMono"},
	}}
}

func collectMeta(report *scenario.Report, author string) DocumentMeta {
	keywords := []string{report.Table, report.Mode, report.Units}
	if report.Category != "" {
		keywords = append(keywords, report.Category)
	}
	return DocumentMeta{
		Title:    strings.TrimSpace("papyrus-scale " + report.Scenario + " " + report.Version),
		Author:   author,
		Subject:  "responsive scaling preview for " + report.Source,
		Creator:  "papyrus-scale",
		Keywords: keywords,
	}
}

func resolvePageSize(name string) (float64, float64, error) {
	if name == "" {
		name = "a4-landscape"
	}
	size, ok := pagePresets[strings.ToLower(name)]
	if !ok {
		return 0, 0, fmt.Errorf("未知的纸张 %s", name)
	}
	return size[0], size[1], nil
}

type sheetBuilder struct {
	report  *scenario.Report
	ts      Typesetter
	res     ResourceSet
	pc      *pageCollector
	cursorY float64
	left    float64
	width   float64
	lh      LineHeightSpec

	body, small, head, title textStyle
}

func (b *sheetBuilder) acc() *pageAccumulator { return b.pc.curr() }

// ensureSpace 在剩余高度不足时换页。
func (b *sheetBuilder) ensureSpace(height float64) {
	if b.cursorY+height <= b.pc.contentBottom() || b.cursorY <= b.pc.contentTop() {
		return
	}
	b.pc.newPage()
	b.cursorY = b.pc.contentTop()
}

// paragraph 在当前光标处追加一段文本并推进光标。
func (b *sheetBuilder) paragraph(content string, st textStyle) error {
	tb, err := b.text(content, st, b.left, b.cursorY, b.width)
	if err != nil {
		return err
	}
	b.ensureSpace(tb.Height)
	tb.Y = b.cursorY
	b.acc().appendText(tb)
	b.cursorY += tb.Height + st.size*0.4
	return nil
}

func (b *sheetBuilder) text(content string, st textStyle, x, y, width float64) (TextBox, error) {
	// 固定行高不小于字号，标题等大字号不会重叠。
	lineHeight := math.Max(b.lh.Resolve(Length{Value: st.size, Unit: UnitMM}, UnitMM), st.size)
	font, ok := b.res.Fonts[st.font]
	if !ok {
		return TextBox{}, fmt.Errorf("字体 %s 未定义", st.font)
	}
	lines, err := layoutLines(content, width, font, st.size, lineHeight, b.ts, "anywhere")
	if err != nil {
		return TextBox{}, err
	}

	totalHeight := 0.0
	defaultLeading := math.Max(lineHeight-st.size, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = st.size
		}
		if i > 0 && lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}
	return TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: lineHeight,
		Font:       st.font,
		FontSize:   st.size,
		Color:      st.color,
		Lines:      lines,
		Height:     totalHeight,
		Align:      st.align,
	}, nil
}

func (b *sheetBuilder) header() error {
	r := b.report
	if err := b.paragraph(strings.TrimSpace(r.Scenario+" "+r.Version), b.title); err != nil {
		return err
	}
	settings := fmt.Sprintf("device: %s · table: %s · uninitialized: %s · units: %s", r.Source, r.Table, r.Mode, r.Units)
	if err := b.paragraph(settings, b.small); err != nil {
		return err
	}
	summary := "engine not configured: every query reports the uninitialized state"
	if r.Configured && r.Viewport != nil {
		vp := r.Viewport
		textScale := "system text scale off"
		if vp.SystemTextScale {
			textScale = "system text scale ×" + scenario.FormatNumber(vp.TextScaleFactor)
		}
		summary = fmt.Sprintf("viewport %s × %s dp @%sx · ppi %s · %s · category %s",
			scenario.FormatNumber(vp.Width), scenario.FormatNumber(vp.Height), scenario.FormatNumber(vp.DevicePixelRatio),
			scenario.FormatNumber(r.PPI), textScale, r.Category)
	}
	if err := b.paragraph(summary, b.body); err != nil {
		return err
	}
	b.cursorY += blockSpacing
	return nil
}

// rulerUpper 返回标尺右端对应的宽度：最后一个断点再延伸一个区间，且容纳当前视口。
func rulerUpper(r *scenario.Report) float64 {
	upper := 1000.0
	if n := len(r.Bands); n >= 2 {
		last, prev := r.Bands[n-1].Min, r.Bands[n-2].Min
		upper = last + (last - prev)
	}
	if r.Viewport != nil && r.Viewport.Width*1.05 > upper {
		upper = r.Viewport.Width * 1.05
	}
	return upper
}

func (b *sheetBuilder) ruler() error {
	r := b.report
	if len(r.Bands) == 0 {
		return nil
	}
	b.ensureSpace(rulerHeight + 4*b.body.size + 3*blockSpacing)
	if err := b.paragraph("Breakpoints", b.head); err != nil {
		return err
	}

	upper := rulerUpper(r)
	xOf := func(w float64) float64 { return b.left + math.Min(w, upper)/upper*b.width }
	top := b.cursorY + b.small.size*1.6
	acc := b.acc()

	for i, band := range r.Bands {
		x0, x1 := xOf(band.Min), xOf(band.Max)
		fill := bandPalette[i%len(bandPalette)]
		stroke := 0.2
		if band.Category.String() == r.Category {
			stroke = 0.6
		}
		acc.rects = append(acc.rects, Rect{X: x0, Y: top, Width: x1 - x0, Height: rulerHeight, StrokeColor: borderColor, StrokeWidth: stroke, FillColor: &fill})

		label, err := b.text(band.Category.String(), textStyle{font: "Body", size: b.small.size, color: inkColor, align: "center"}, x0, top+(rulerHeight-b.small.size)/2, x1-x0)
		if err != nil {
			return err
		}
		acc.appendText(label)

		tick, err := b.text(scenario.FormatNumber(band.Min), b.small, x0+0.6, top+rulerHeight+0.8, math.Max(x1-x0-0.6, 1))
		if err != nil {
			return err
		}
		acc.appendText(tick)
		acc.lines = append(acc.lines, Line{X1: x0, Y1: top, X2: x0, Y2: top + rulerHeight + b.small.size + 1, Color: mutedColor, Width: 0.2})
	}

	if r.Configured && r.Viewport != nil {
		x := xOf(r.Viewport.Width)
		acc.lines = append(acc.lines, Line{X1: x, Y1: top - 1.5, X2: x, Y2: top + rulerHeight + 1.5, Color: markerColor, Width: 0.5})
		fill := markerColor
		acc.circles = append(acc.circles, Circle{CX: x, CY: top - 1.5 - markerRadius, R: markerRadius, StrokeColor: markerColor, StrokeWidth: 0.2, FillColor: &fill})
		label, err := b.text("width "+scenario.FormatNumber(r.Viewport.Width), textStyle{font: "Body", size: b.small.size, color: markerColor}, x+markerRadius+0.8, top-1.5-markerRadius-b.small.size/2, 40)
		if err != nil {
			return err
		}
		acc.appendText(label)
	}

	b.cursorY = top + rulerHeight + b.small.size*1.6 + blockSpacing
	return nil
}

func (b *sheetBuilder) viewport() error {
	r := b.report
	if !r.Configured || r.Viewport == nil || r.Base == nil {
		return nil
	}
	b.ensureSpace(previewHeight + b.head.size*2)
	if err := b.paragraph("Viewport vs base", b.head); err != nil {
		return err
	}
	top := b.cursorY
	acc := b.acc()

	vw, vh := r.Viewport.Width, r.Viewport.Height
	bw, bh := r.Base.Width, r.Base.Height
	boxWidth := b.width * 0.35
	k := math.Min(boxWidth/math.Max(vw, bw), previewHeight/math.Max(vh, bh))
	fill := paperColor
	acc.rects = append(acc.rects,
		Rect{X: b.left, Y: top, Width: vw * k, Height: vh * k, StrokeColor: inkColor, StrokeWidth: 0.3, FillColor: &fill},
		Rect{X: b.left, Y: top, Width: bw * k, Height: bh * k, StrokeColor: markerColor, StrokeWidth: 0.3},
	)

	notes := []string{
		fmt.Sprintf("viewport %s × %s", scenario.FormatNumber(vw), scenario.FormatNumber(vh)),
		fmt.Sprintf("base %s × %s", scenario.FormatNumber(bw), scenario.FormatNumber(bh)),
		"width ratio " + scenario.FormatNumber(vw/bw),
		"height ratio " + scenario.FormatNumber(vh/bh),
	}
	x := b.left + boxWidth + blockSpacing
	y := top
	colWidth := b.width*0.3 - blockSpacing
	for i, note := range notes {
		st := b.body
		if i == 1 {
			st.color = markerColor
		}
		tb, err := b.text(note, st, x, y, colWidth)
		if err != nil {
			return err
		}
		acc.appendText(tb)
		y += tb.Height + b.body.size*0.5
	}

	flagsBottom, err := b.flags(b.left+b.width*0.65, top, b.width*0.35)
	if err != nil {
		return err
	}
	b.cursorY = math.Max(math.Max(top+previewHeight, y), flagsBottom) + blockSpacing
	return nil
}

// flags 在指定列中逐行列出布尔查询，实心圆表示 true。
func (b *sheetBuilder) flags(x, y, width float64) (float64, error) {
	names := make([]string, 0, len(b.report.Flags))
	for name := range b.report.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	acc := b.acc()
	for _, name := range names {
		c := Circle{CX: x + flagRadius, CY: y + b.body.size/2, R: flagRadius, StrokeColor: inkColor, StrokeWidth: 0.2}
		if b.report.Flags[name] {
			fill := inkColor
			c.FillColor = &fill
		}
		acc.circles = append(acc.circles, c)
		tb, err := b.text(name, b.body, x+3*flagRadius, y, width-3*flagRadius)
		if err != nil {
			return 0, err
		}
		acc.appendText(tb)
		y += tb.Height + b.body.size*0.4
	}
	return y, nil
}

func (b *sheetBuilder) queries() error {
	r := b.report
	if len(r.Queries) == 0 {
		return nil
	}
	b.ensureSpace(b.head.size*2 + 3*b.body.size)
	if err := b.paragraph("Queries", b.head); err != nil {
		return err
	}

	total := 0.0
	for _, col := range queryColumns {
		total += col.weight
	}
	widths := make([]float64, len(queryColumns))
	titles := make([]string, len(queryColumns))
	for i, col := range queryColumns {
		widths[i] = b.width * col.weight / total
		titles[i] = col.title
	}

	newTable := func() (*TableBox, error) {
		table := &TableBox{X: b.left, Y: b.cursorY, Width: b.width, ColumnWidths: widths, BorderColor: borderColor}
		row, err := b.row(titles, widths, b.cursorY, true)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
		b.cursorY += row.Height
		return table, nil
	}
	table, err := newTable()
	if err != nil {
		return err
	}
	for _, q := range r.Queries {
		row, err := b.row(queryCells(q), widths, b.cursorY, false)
		if err != nil {
			return err
		}
		if b.cursorY+row.Height > b.pc.contentBottom() {
			b.acc().appendTable(*table)
			b.pc.newPage()
			b.cursorY = b.pc.contentTop()
			if table, err = newTable(); err != nil {
				return err
			}
			if row, err = b.row(queryCells(q), widths, b.cursorY, false); err != nil {
				return err
			}
		}
		table.Rows = append(table.Rows, row)
		b.cursorY += row.Height
	}
	b.acc().appendTable(*table)
	b.cursorY += blockSpacing
	return nil
}

func (b *sheetBuilder) row(cells []string, widths []float64, y float64, header bool) (TableRow, error) {
	row := TableRow{Y: y, IsHeader: header}
	st := b.body
	if header {
		st.font = "Bold"
	}
	x := b.left
	maxHeight := 0.0
	for i, content := range cells {
		cellWidth := widths[i] - 2*cellPadding
		if cellWidth <= 0 {
			cellWidth = widths[i]
		}
		cellStyle := st
		if !header && i == 1 {
			cellStyle.font = "Mono"
		}
		tb, err := b.text(content, cellStyle, x+cellPadding, y+cellPadding, cellWidth)
		if err != nil {
			return row, err
		}
		row.Cells = append(row.Cells, TableCell{Text: tb})
		maxHeight = math.Max(maxHeight, tb.Height)
		x += widths[i]
	}
	row.Height = maxHeight + 2*cellPadding
	return row, nil
}

func queryCells(q scenario.Query) []string {
	return []string{q.Name, q.Call(), q.Kind, q.Result(), q.Note()}
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		height := fontSize
		if height <= 0 {
			height = lineHeight
		}
		lines = []TextLine{{Content: "", Width: width, Height: height}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}

type pageAccumulator struct {
	texts   []TextBox
	tables  []TableBox
	lines   []Line
	rects   []Rect
	circles []Circle
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendTable(t TableBox) {
	p.tables = append(p.tables, t)
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 { return pc.margin.Top }

func (pc *pageCollector) contentBottom() float64 { return pc.height - pc.margin.Bottom }

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:   pc.width,
			Height:  pc.height,
			Margin:  pc.margin,
			Texts:   acc.texts,
			Tables:  acc.tables,
			Lines:   acc.lines,
			Rects:   acc.rects,
			Circles: acc.circles,
		}
	}
	return out
}
