package langmodel

import (
	"fmt"
	"strings"
)

// CharStats holds what the model learned about one successor character of a window.
type CharStats struct {
	Char  rune
	Count int
	P     float64
	CP    float64
}

func (cs CharStats) String() string {
	return fmt.Sprintf("(%c %d %v %v)", cs.Char, cs.Count, cs.P, cs.CP)
}

// indexOf returns the position of ch in list, or -1.
func indexOf(list []CharStats, ch rune) int {
	for i := range list {
		if list[i].Char == ch {
			return i
		}
	}
	return -1
}

// addChar counts one occurrence of ch, appending a new entry on first sight.
func addChar(list []CharStats, ch rune) []CharStats {
	if i := indexOf(list, ch); i >= 0 {
		list[i].Count++
		return list
	}
	return append(list, CharStats{Char: ch, Count: 1})
}

// calculateProbabilities sets P and CP on every entry from the counts alone.
// CP accumulates in list order.
func calculateProbabilities(list []CharStats) {
	total := 0
	for _, cs := range list {
		total += cs.Count
	}
	if total == 0 {
		return
	}
	cp := 0.0
	for i := range list {
		list[i].P = float64(list[i].Count) / float64(total)
		cp += list[i].P
		list[i].CP = cp
	}
}

func formatList(list []CharStats) string {
	parts := make([]string, len(list))
	for i, cs := range list {
		parts[i] = cs.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
