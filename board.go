package bingo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/message"
)

// ANSI styles: grey cells, black on yellow for called numbers
const (
	styleReset     = "\x1b[0m"
	styleTitle     = "\x1b[1;97m"
	styleLast      = "\x1b[1;93m"
	styleCell      = "\x1b[97;100m"
	styleCalled    = "\x1b[1;30;103m"
	styleRowLetter = "\x1b[1;97m"
)

// noNumber is shown in place of the last number before the first draw
const noNumber = "—"

// Board renders session snapshots as a 5x15 grid, one row per BINGO letter.
//
// Cells are looked up by number; the board keeps no state of its own besides
// display settings, which may be swapped while the game runs.
type Board struct {
	out io.Writer

	mu      sync.RWMutex
	display DisplayConfig
	printer *message.Printer
	color   bool
}

// NewBoard creates a board writing to out
func NewBoard(display *DisplayConfig, out io.Writer) *Board {
	b := &Board{out: out}
	b.SetDisplay(display)
	return b
}

// SetDisplay applies new display settings; nil restores the defaults
func (b *Board) SetDisplay(display *DisplayConfig) {
	if display == nil {
		display = DefaultDisplayConfig()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.display = *display
	b.printer = newPrinter(display.Language)
	b.color = colorEnabled(display.Color, b.out)
}

// Display returns a copy of the current display settings
func (b *Board) Display() DisplayConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.display
}

// colorEnabled resolves a color mode against the output; auto means "a terminal, and NO_COLOR unset"
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Sprintf formats a message key in the board's language
func (b *Board) Sprintf(key string, args ...any) string {
	b.mu.RLock()
	p := b.printer
	b.mu.RUnlock()

	return p.Sprintf(key, args...)
}

// Println writes a translated line
func (b *Board) Println(key string, args ...any) error {
	_, err := fmt.Fprintln(b.out, b.Sprintf(key, args...))
	return err
}

// Render draws the title, the last called number, the grid and the progress line
func (b *Board) Render(snap SessionSnapshot) error {
	b.mu.RLock()
	color := b.color
	p := b.printer
	b.mu.RUnlock()

	w := bufio.NewWriter(b.out)
	width := 4 + GridColumns*4 - 1

	last := noNumber
	if snap.HasLastDrawn() {
		last = CallLabel(snap.LastDrawn)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, style(color, styleTitle, center(p.Sprintf(msgTitle), width)))
	fmt.Fprintln(w, style(color, styleLast, center(p.Sprintf(msgLastNumber, last), width)))
	fmt.Fprintln(w)

	for row := 0; row < GridRows; row++ {
		fmt.Fprint(w, style(color, styleRowLetter, fmt.Sprintf(" %c  ", ColumnLetters[row])))
		for col := 0; col < GridColumns; col++ {
			n := row*GridColumns + col + 1
			fmt.Fprint(w, renderCell(n, snap.IsDrawn(n), color))
			if col < GridColumns-1 {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Sprintf(msgProgress, len(snap.Drawn), snap.UpperBound, snap.Remaining))

	return w.Flush()
}

// renderCell returns a 3-column cell; without color, called numbers get a '*' marker
func renderCell(n int, called, color bool) string {
	if color {
		if called {
			return style(true, styleCalled, fmt.Sprintf("%3d", n))
		}
		return style(true, styleCell, fmt.Sprintf("%3d", n))
	}
	if called {
		return fmt.Sprintf("*%2d", n)
	}
	return fmt.Sprintf("%3d", n)
}

// Notice draws a framed message box, the terminal stand-in for a dialog
func (b *Board) Notice(titleKey, bodyKey string) error {
	title := b.Sprintf(titleKey)
	body := b.Sprintf(bodyKey)

	inner := max(utf8.RuneCountInString(title), utf8.RuneCountInString(body)) + 2
	border := "+" + strings.Repeat("-", inner) + "+"

	var sb strings.Builder
	sb.WriteString(border + "\n")
	sb.WriteString("| " + pad(title, inner-2) + " |\n")
	sb.WriteString("| " + pad(body, inner-2) + " |\n")
	sb.WriteString(border + "\n")

	_, err := io.WriteString(b.out, sb.String())
	return err
}

func style(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return code + s + styleReset
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
