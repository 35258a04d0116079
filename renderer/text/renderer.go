// Package textrenderer prints a scenario report as terminal tables.
package textrenderer

import (
	"bytes"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/ByLCY/papyrus-scale/renderer"
	"github.com/ByLCY/papyrus-scale/scenario"
)

var (
	colorText    = lipgloss.Color("#F8F8F2")
	colorMuted   = lipgloss.Color("#6272A4")
	colorPrimary = lipgloss.Color("#BD93F9")
	colorSuccess = lipgloss.Color("#50FA7B")
	colorDanger  = lipgloss.Color("#FF5555")
	colorBorder  = lipgloss.Color("#44475A")
)

// Options configures the text renderer.
type Options struct {
	// Color enables ANSI styling; without it the output is plain text.
	Color bool
	// Output is the terminal whose color profile is detected when Color is set.
	Output io.Writer
}

// Renderer formats reports with lipgloss.
type Renderer struct {
	lg *lipgloss.Renderer

	title, muted, header, cell, ok, bad, current lipgloss.Style
}

var _ renderer.ReportRenderer = (*Renderer)(nil)

// New creates a text renderer.
func New(opts Options) *Renderer {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	lg := lipgloss.NewRenderer(out)
	if !opts.Color {
		lg.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		lg:      lg,
		title:   lg.NewStyle().Bold(true).Foreground(colorPrimary),
		muted:   lg.NewStyle().Foreground(colorMuted),
		header:  lg.NewStyle().Bold(true).Foreground(colorText).Padding(0, 1),
		cell:    lg.NewStyle().Padding(0, 1),
		ok:      lg.NewStyle().Foreground(colorSuccess),
		bad:     lg.NewStyle().Foreground(colorDanger),
		current: lg.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1),
	}
}

// RenderReport implements renderer.ReportRenderer.
func (r *Renderer) RenderReport(report *scenario.Report) ([]byte, error) {
	var buf bytes.Buffer
	if report == nil {
		return buf.Bytes(), nil
	}
	buf.WriteString(r.summary(report))
	buf.WriteString("\n\n")
	buf.WriteString(r.bands(report))
	if flags := r.flags(report); flags != "" {
		buf.WriteString("\n")
		buf.WriteString(flags)
	}
	if len(report.Queries) > 0 {
		buf.WriteString("\n")
		buf.WriteString(r.queries(report))
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func (r *Renderer) summary(report *scenario.Report) string {
	title := strings.TrimSpace(report.Scenario + " " + report.Version)
	lines := []string{
		r.title.Render(title) + r.muted.Render("  device: "+report.Source),
		r.muted.Render("table " + report.Table + " · uninitialized " + report.Mode + " · units " + report.Units),
	}
	if !report.Configured || report.Viewport == nil {
		lines = append(lines, r.bad.Render("engine not configured"))
		return strings.Join(lines, "\n")
	}
	vp := report.Viewport
	textScale := "system text scale off"
	if vp.SystemTextScale {
		textScale = "system text scale ×" + scenario.FormatNumber(vp.TextScaleFactor)
	}
	parts := []string{
		"viewport " + size(vp.Width, vp.Height) + " @" + scenario.FormatNumber(vp.DevicePixelRatio) + "x",
		"ppi " + scenario.FormatNumber(report.PPI),
		textScale,
		"category " + report.Category,
	}
	if report.Base != nil {
		parts = append(parts, "base "+size(report.Base.Width, report.Base.Height))
	}
	lines = append(lines, strings.Join(parts, " · "))
	return strings.Join(lines, "\n")
}

func (r *Renderer) bands(report *scenario.Report) string {
	currentRow := -1
	rows := make([][]string, 0, len(report.Bands))
	for i, band := range report.Bands {
		upper := "∞"
		if !math.IsInf(band.Max, 1) {
			upper = scenario.FormatNumber(band.Max)
		}
		mark := ""
		if band.Category.String() == report.Category {
			mark = "◀"
			currentRow = i
		}
		rows = append(rows, []string{
			band.Category.String(),
			scenario.FormatNumber(band.Min),
			upper,
			size(band.Base.Width, band.Base.Height),
			mark,
		})
	}
	return r.table([]string{"category", "min", "max", "base", ""}, rows, func(row, col int) lipgloss.Style {
		if row == currentRow {
			return r.current
		}
		return r.cell
	})
}

func (r *Renderer) flags(report *scenario.Report) string {
	if len(report.Flags) == 0 {
		return ""
	}
	names := make([]string, 0, len(report.Flags))
	for name := range report.Flags {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if report.Flags[name] {
			parts = append(parts, r.ok.Render("● "+name))
		} else {
			parts = append(parts, r.muted.Render("○ "+name))
		}
	}
	return strings.Join(parts, "  ")
}

func (r *Renderer) queries(report *scenario.Report) string {
	rows := make([][]string, 0, len(report.Queries))
	for _, q := range report.Queries {
		rows = append(rows, []string{q.Name, q.Call(), q.Kind, q.Result(), q.Note()})
	}
	return r.table([]string{"name", "call", "kind", "result", "note"}, rows, func(row, col int) lipgloss.Style {
		if row >= 0 && row < len(report.Queries) && col == 3 && report.Queries[row].Error != "" {
			return r.bad.Padding(0, 1)
		}
		return r.cell
	})
}

func (r *Renderer) table(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.lg.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return style(row, col)
		})
	return t.String()
}

func size(w, h float64) string {
	return scenario.FormatNumber(w) + "×" + scenario.FormatNumber(h)
}
