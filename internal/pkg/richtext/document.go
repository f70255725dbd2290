// Package richtext models the observations narrative: plain lines with
// optional bullet or number prefixes and bold/underline runs.
package richtext

import (
	"regexp"
	"strconv"
	"strings"
)

// BulletPrefix starts every bullet line.
const BulletPrefix = "• "

var numberedPattern = regexp.MustCompile(`^(\d+)\.`)

// Marker is the block prefix of a line.
type Marker int

const (
	None Marker = iota
	Bullet
	Numbered
)

// Run is a span of text sharing one inline style.
type Run struct {
	Text      string
	Bold      bool
	Underline bool
}

// Line is one visual line of the narrative.
type Line struct {
	Marker Marker
	Number int
	Runs   []Run
}

// Prefix returns the literal text the marker contributes.
func (l Line) Prefix() string {
	switch l.Marker {
	case Bullet:
		return BulletPrefix
	case Numbered:
		return strconv.Itoa(l.Number) + ". "
	default:
		return ""
	}
}

// Body returns the line text without its prefix.
func (l Line) Body() string {
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Text returns the full line text as it reads on screen.
func (l Line) Text() string {
	return l.Prefix() + l.Body()
}

// Empty reports whether the line has neither prefix nor text.
func (l Line) Empty() bool {
	return l.Marker == None && strings.TrimSpace(l.Body()) == ""
}

// Document is the narrative being edited. The caret is always at the end.
type Document struct {
	Lines     []Line
	bold      bool
	underline bool
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Bold reports whether newly typed text will be bold.
func (d *Document) Bold() bool { return d.bold }

// Underline reports whether newly typed text will be underlined.
func (d *Document) Underline() bool { return d.underline }

// ToggleBold flips bold for subsequently typed text.
func (d *Document) ToggleBold() { d.bold = !d.bold }

// ToggleUnderline flips underline for subsequently typed text.
func (d *Document) ToggleUnderline() { d.underline = !d.underline }

// IsEmpty reports whether the document holds no text at all.
func (d *Document) IsEmpty() bool {
	for _, l := range d.Lines {
		if !l.Empty() {
			return false
		}
	}
	return true
}

// Type appends text at the caret in the current style.
func (d *Document) Type(text string) {
	if text == "" {
		return
	}
	if len(d.Lines) == 0 {
		d.Lines = append(d.Lines, Line{})
	}
	last := &d.Lines[len(d.Lines)-1]
	if n := len(last.Runs); n > 0 && last.Runs[n-1].Bold == d.bold && last.Runs[n-1].Underline == d.underline {
		last.Runs[n-1].Text += text
		return
	}
	last.Runs = append(last.Runs, Run{Text: text, Bold: d.bold, Underline: d.underline})
}

// Bullet starts a new bullet line. On an empty document the bullet becomes the first line.
func (d *Document) Bullet() {
	d.startLine(Line{Marker: Bullet})
}

// Numbered starts a new numbered line, one above the last number used.
func (d *Document) Numbered() {
	d.startLine(Line{Marker: Numbered, Number: d.lastNumber() + 1})
}

// LineBreak ends the current line. When the last non-empty line reads as a
// list item, typed or inserted, the list continues on the new line; anything
// else gets a plain line.
func (d *Document) LineBreak() {
	if prev, ok := d.lastNonEmpty(); ok {
		text := prev.Text()
		if m := numberedPattern.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				d.Lines = append(d.Lines, Line{Marker: Numbered, Number: n + 1})
				return
			}
		}
		if strings.HasPrefix(text, strings.TrimSpace(BulletPrefix)) {
			d.Lines = append(d.Lines, Line{Marker: Bullet})
			return
		}
	}
	if len(d.Lines) == 0 {
		d.Lines = append(d.Lines, Line{})
	}
	d.Lines = append(d.Lines, Line{})
}

func (d *Document) startLine(l Line) {
	if d.IsEmpty() {
		d.Lines = []Line{l}
		return
	}
	d.Lines = append(d.Lines, l)
}

// lastNumber scans lines from the end for a "N." prefix.
func (d *Document) lastNumber() int {
	for i := len(d.Lines) - 1; i >= 0; i-- {
		if m := numberedPattern.FindStringSubmatch(d.Lines[i].Text()); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n
			}
		}
	}
	return 0
}

func (d *Document) lastNonEmpty() (Line, bool) {
	for i := len(d.Lines) - 1; i >= 0; i-- {
		if !d.Lines[i].Empty() {
			return d.Lines[i], true
		}
	}
	return Line{}, false
}

// Text returns the plain lines of the document.
func (d *Document) Text() []string {
	out := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Text()
	}
	return out
}
