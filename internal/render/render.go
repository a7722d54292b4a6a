// Package render draws console screens as text: aligned tables, status badges and
// the loading / empty / error lines every list screen shows.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// Phase is what a screen shows above its rows
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseError
	PhaseEmpty
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseEmpty:
		return "empty"
	}
	return "ready"
}

// LoadingText is shown while a screen has nothing to display yet
const LoadingText = "Loading…"

// Header is the state line of a screen
type Header struct {
	Phase   Phase
	Message string
}

// Cell is one table cell; a toned cell is drawn as a badge
type Cell struct {
	Text string
	Tone status.Tone
	// Badge draws the text in brackets
	Badge bool
}

// Text makes a plain cell
func Text(s string) Cell {
	return Cell{Text: s}
}

// Badge makes a badge cell
func Badge(label string, tone status.Tone) Cell {
	return Cell{Text: label, Tone: tone, Badge: true}
}

// Table is a titled grid with an explicit empty state
type Table struct {
	Title   string
	Columns []string
	Rows    [][]Cell
	// Empty is shown instead of rows when there are none
	Empty string
}

// Field is one labelled value of a summary card
type Field struct {
	Label string
	Value Cell
}

// Renderer writes screens to w
type Renderer struct {
	w       io.Writer
	color   bool
	palette map[status.Tone]string
}

// New creates a renderer. Colors are used only when color is true.
func New(w io.Writer, theme model.ThemeMode, color bool) *Renderer {
	return &Renderer{
		w:       w,
		color:   color,
		palette: paletteFor(theme),
	}
}

// ColorSupported reports whether w is a terminal that should get ANSI colors
func ColorSupported(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const reset = "\x1b[0m"

func paletteFor(theme model.ThemeMode) map[status.Tone]string {
	if theme == model.ThemeLight {
		return map[status.Tone]string{
			status.ToneSuccess: "\x1b[32m",
			status.ToneInfo:    "\x1b[34m",
			status.ToneWarning: "\x1b[33m",
			status.ToneDanger:  "\x1b[31m",
			status.ToneAccent:  "\x1b[35m",
			status.ToneNeutral: "\x1b[90m",
			status.ToneMuted:   "\x1b[90m",
		}
	}
	return map[status.Tone]string{
		status.ToneSuccess: "\x1b[92m",
		status.ToneInfo:    "\x1b[96m",
		status.ToneWarning: "\x1b[93m",
		status.ToneDanger:  "\x1b[91m",
		status.ToneAccent:  "\x1b[95m",
		status.ToneNeutral: "\x1b[37m",
		status.ToneMuted:   "\x1b[37m",
	}
}

// plain is the visible text of c
func plain(c Cell) string {
	if c.Badge {
		return "[" + c.Text + "]"
	}
	return c.Text
}

// cell formats c, coloring badges when enabled
func (r *Renderer) cell(c Cell) string {
	text := plain(c)
	if !r.color || !c.Badge {
		return text
	}
	code, ok := r.palette[c.Tone]
	if !ok {
		return text
	}
	return code + text + reset
}

const gap = 2

// grid writes rows with every column padded to its widest visible text
func (r *Renderer) grid(prefix string, rows [][]Cell) error {
	var widths []int
	for _, row := range rows {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(plain(c)))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(prefix)
		for i, c := range row {
			b.WriteString(r.cell(c))
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(plain(c))+gap))
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Title writes a screen heading
func (r *Renderer) Title(title string) error {
	_, err := fmt.Fprintf(r.w, "%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
	return err
}

// Header writes the state line. A ready screen writes nothing.
func (r *Renderer) Header(h Header, empty string) error {
	var line string
	switch h.Phase {
	case PhaseLoading:
		line = LoadingText
	case PhaseError:
		line = "Error: " + h.Message
	case PhaseEmpty:
		line = empty
	default:
		return nil
	}
	_, err := fmt.Fprintln(r.w, line)
	return err
}

// Table writes t with aligned columns, or its empty text
func (r *Renderer) Table(t Table) error {
	if t.Title != "" {
		if _, err := fmt.Fprintf(r.w, "\n%s\n", t.Title); err != nil {
			return err
		}
	}
	if len(t.Rows) == 0 {
		if t.Empty == "" {
			return nil
		}
		_, err := fmt.Fprintln(r.w, t.Empty)
		return err
	}

	rows := make([][]Cell, 0, len(t.Rows)+1)
	header := make([]Cell, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = Text(col)
	}
	rows = append(rows, header)
	rows = append(rows, t.Rows...)
	return r.grid("", rows)
}

// Fields writes a summary card as label: value lines
func (r *Renderer) Fields(title string, fields []Field) error {
	if title != "" {
		if _, err := fmt.Fprintf(r.w, "\n%s\n", title); err != nil {
			return err
		}
	}
	rows := make([][]Cell, len(fields))
	for i, f := range fields {
		rows[i] = []Cell{Text(f.Label + ":"), f.Value}
	}
	return r.grid("  ", rows)
}

// Line writes one line of free text
func (r *Renderer) Line(format string, args ...any) error {
	_, err := fmt.Fprintf(r.w, format+"\n", args...)
	return err
}

// Badge renders a single badge inline
func (r *Renderer) Badge(label string, tone status.Tone) string {
	return r.cell(Badge(label, tone))
}
