package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"ssequote/internal/batch"
)

type tone int

const (
	toneInfo tone = iota
	toneOK
	toneWarn
	toneError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	labelWidth   = 18
	maxCellWidth = 80
)

func (t tone) label() string {
	switch t {
	case toneOK:
		return "OK"
	case toneWarn:
		return "WARN"
	case toneError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (t tone) color() string {
	switch t {
	case toneOK:
		return ansiGreen
	case toneWarn:
		return ansiYellow
	case toneError:
		return ansiRed
	default:
		return ansiBlue
	}
}

// countTone colors a failure count: zero is good, anything else is an error.
func countTone(n int) tone {
	if n == 0 {
		return toneOK
	}
	return toneError
}

type column struct {
	title string
	right bool
}

var failureColumns = []column{{title: "Episode", right: true}, {title: "Kind"}, {title: "Error"}}

// report accumulates the human-readable output of a command.
type report struct {
	b        strings.Builder
	colorize bool
}

func newReport(colorize bool) *report {
	return &report{colorize: colorize}
}

func (r *report) paint(color, s string) string {
	if !r.colorize {
		return s
	}
	return color + s + ansiReset
}

func (r *report) section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	r.b.WriteString(r.paint(ansiBlue, line) + "\n")
	r.b.WriteString(r.paint(ansiBlue, strings.Repeat("-", len(line))) + "\n")
}

func (r *report) status(label string, t tone, message string) {
	r.b.WriteString(statusLine(label, t, message, r.colorize) + "\n")
}

func (r *report) table(cols []column, rows [][]string) {
	if len(cols) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft, WidthMax: maxCellWidth}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(cols))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}
	r.b.WriteString(tw.Render() + "\n")
}

func (r *report) blank() {
	r.b.WriteString("\n")
}

func (r *report) String() string {
	return r.b.String()
}

func statusLine(label string, t tone, message string, colorize bool) string {
	status := "[" + t.label() + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", labelWidth, label+":", status)
	if colorize {
		return t.color() + line + ansiReset
	}
	return line
}

func renderSummary(summary batch.Summary, colorize bool) string {
	r := newReport(colorize)
	r.section(fmt.Sprintf("Batch %d-%d", summary.From, summary.To))
	if summary.Processed == 0 {
		r.status("Episodes", toneInfo, "none in range")
		return r.String()
	}

	r.status("Run", toneInfo, shortID(summary.RunID))
	r.status("Processed", toneInfo, strconv.Itoa(summary.Processed))
	r.status("Succeeded", toneOK, strconv.Itoa(summary.Succeeded))
	r.status("Failed", countTone(summary.Failed()), strconv.Itoa(summary.Failed()))
	r.status("Duration", toneInfo, summary.Duration().Round(time.Second).String())
	if summary.Failed() == 0 {
		return r.String()
	}

	rows := make([][]string, 0, summary.Failed())
	for _, f := range summary.SortedFailures() {
		rows = append(rows, []string{strconv.Itoa(f.Episode), f.Kind, errorText(f.Err)})
	}
	r.blank()
	r.table(failureColumns, rows)
	return r.String()
}

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
