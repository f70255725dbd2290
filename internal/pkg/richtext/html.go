package richtext

import (
	"html"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
)

// HTML serializes the document into the narrative markup stored on a record:
// lines separated by <br>, inline <b> and <u>.
func (d *Document) HTML() string {
	var b strings.Builder
	for i, l := range d.Lines {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(l.Prefix()))
		for _, r := range l.Runs {
			text := html.EscapeString(r.Text)
			if r.Underline {
				text = "<u>" + text + "</u>"
			}
			if r.Bold {
				text = "<b>" + text + "</b>"
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// ParseHTML reads narrative markup back into a document. It understands the
// markup HTML produces plus what browser editors emit (<strong>, <div>, <p>,
// entities); other tags are dropped and their text kept.
func ParseHTML(s string) *Document {
	d := New()
	z := nethtml.NewTokenizer(strings.NewReader(s))
	bold, underline := 0, 0
	var current strings.Builder
	var runs []Run
	lineStarted := false

	flushRun := func() {
		if current.Len() == 0 {
			return
		}
		runs = append(runs, Run{Text: current.String(), Bold: bold > 0, Underline: underline > 0})
		current.Reset()
	}
	endLine := func() {
		flushRun()
		d.Lines = append(d.Lines, lineFromRuns(runs))
		runs = nil
		lineStarted = false
	}

	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			flushRun()
			if lineStarted || len(runs) > 0 {
				d.Lines = append(d.Lines, lineFromRuns(runs))
			}
			return d
		case nethtml.TextToken:
			text := string(z.Text())
			if text != "" {
				current.WriteString(text)
				lineStarted = true
			}
		case nethtml.StartTagToken, nethtml.EndTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch tag {
			case "b", "strong":
				flushRun()
				if tt == nethtml.StartTagToken {
					bold++
				} else if tt == nethtml.EndTagToken && bold > 0 {
					bold--
				}
			case "u":
				flushRun()
				if tt == nethtml.StartTagToken {
					underline++
				} else if tt == nethtml.EndTagToken && underline > 0 {
					underline--
				}
			case "br":
				if tt != nethtml.EndTagToken {
					endLine()
					lineStarted = true
				}
			case "div", "p":
				// Block elements start a new line unless the current one is still blank.
				if tt == nethtml.StartTagToken && (lineStarted || current.Len() > 0 || len(runs) > 0) {
					endLine()
				}
			}
		}
	}
}

// lineFromRuns recovers the marker from the literal prefix of the first run.
func lineFromRuns(runs []Run) Line {
	l := Line{Runs: runs}
	if len(runs) == 0 {
		return l
	}
	first := runs[0].Text
	switch {
	case strings.HasPrefix(first, BulletPrefix):
		l.Marker = Bullet
		l.Runs = trimFirst(runs, len(BulletPrefix))
	default:
		if m := numberedPattern.FindStringSubmatch(first); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				cut := len(m[0])
				if strings.HasPrefix(first[cut:], " ") {
					cut++
				}
				l.Marker = Numbered
				l.Number = n
				l.Runs = trimFirst(runs, cut)
			}
		}
	}
	return l
}

func trimFirst(runs []Run, n int) []Run {
	out := append([]Run(nil), runs...)
	out[0].Text = out[0].Text[n:]
	if out[0].Text == "" {
		out = out[1:]
	}
	return out
}
