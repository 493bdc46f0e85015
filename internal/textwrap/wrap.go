// Package textwrap breaks generated text into display-width lines.
package textwrap

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type cell struct {
	r       rune
	width   int
	isSpace bool
}

// Wrap breaks text at spaces so that no line is wider than width columns.
// A run without spaces that does not fit is broken mid-word. The space a line
// is broken at is dropped.
func Wrap(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	var out strings.Builder
	line := make([]cell, 0, width)
	lineWidth := 0
	lastSpaceIdx := -1

	runes := []rune(text)
	for i := 0; i < len(runes); {
		item := cell{r: runes[i], width: runewidth.RuneWidth(runes[i]), isSpace: runes[i] == ' '}
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				writeLine(&out, line)
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				writeLine(&out, line[:lastSpaceIdx])
				line = append([]cell{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				writeLine(&out, line)
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	for _, c := range line {
		out.WriteRune(c.r)
	}
	return out.String()
}

func writeLine(out *strings.Builder, line []cell) {
	for _, c := range line {
		out.WriteRune(c.r)
	}
	out.WriteRune('\n')
}

func lineWidthOf(line []cell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
