package game

import (
	"strings"
	"unicode/utf8"
)

// wrapText breaks s into lines no wider than maxWidth as reported by width.
// Words are split on spaces; a word wider than a line is broken between
// runes, which also covers text written without spaces.
func wrapText(s string, maxWidth float64, width func(string) float64) []string {
	if maxWidth <= 0 {
		return strings.Split(s, "\n")
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if width(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for utf8.RuneCountInString(w) > 1 && width(w) > maxWidth {
				cut := fitPrefix(w, maxWidth, width)
				lines = append(lines, w[:cut])
				w = w[cut:]
			}
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of w that fits,
// never less than one rune.
func fitPrefix(w string, maxWidth float64, width func(string) float64) int {
	cut := 0
	for i, r := range w {
		next := i + utf8.RuneLen(r)
		if cut > 0 && width(w[:next]) > maxWidth {
			break
		}
		cut = next
	}
	return cut
}

// clipLines keeps at most n lines, marking the cut with an ellipsis.
func clipLines(lines []string, n int) []string {
	if n < 1 {
		n = 1
	}
	if len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	out[n-1] += "..."
	return out
}

// dragger moves the window with the cursor. Cursor positions are window
// relative, so the grab point stays put while the window follows.
type dragger struct {
	active       bool
	grabX, grabY int
}

func (d *dragger) begin(x, y int) {
	d.active = true
	d.grabX, d.grabY = x, y
}

func (d *dragger) end() {
	d.active = false
}

// delta is how far the window must move to keep the grab point under the
// cursor at (x, y).
func (d *dragger) delta(x, y int) (int, int) {
	if !d.active {
		return 0, 0
	}
	return x - d.grabX, y - d.grabY
}
