// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/charlm/internal/model"
)

const sparkChars = " .:-=+*#%@"

// CountChars counts each character of text, ordered by character.
func CountChars(text string) []model.CharCount {
	counts := map[rune]int{}
	for _, r := range text {
		counts[r]++
	}
	out := make([]model.CharCount, 0, len(counts))
	for r, n := range counts {
		out = append(out, model.CharCount{Char: string(r), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Char < out[j].Char
	})
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalChars, totalFallbacks, seeded int
	var totalMs int64
	for _, r := range runs {
		totalChars += r.Length
		totalFallbacks += r.Fallbacks
		totalMs += r.DurationMs
		if r.Seeded {
			seeded++
		}
	}
	count := float64(len(runs))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runs: %d (%d fixed, %d random)\n", len(runs), seeded, len(runs)-seeded); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Generated chars: %d\n", totalChars); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg length: %.1f\n", float64(totalChars)/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg duration: %.1f ms\n", float64(totalMs)/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Fallbacks: %d\n", totalFallbacks); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderRuns prints one row per run with a preview of its output.
func RenderRuns(w io.Writer, runs []model.RunAggregate, previewWidth int) error {
	if len(runs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Runs"); err != nil {
		return err
	}
	headers := []string{"ID", "Ended", "Window", "Length", "Mode", "Fallbacks", "Output"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		mode := "random"
		if r.Seeded {
			mode = "fixed"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.RunID),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.Window),
			fmt.Sprintf("%d", r.Length),
			mode,
			fmt.Sprintf("%d", r.Fallbacks),
			preview(r.Output, previewWidth),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCharTable prints output character aggregates, most frequent first. A
// positive top limits the table to that many characters.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate, top int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	total := 0
	byChar := make(map[string]model.CharAggregate, len(aggs))
	for _, agg := range aggs {
		total += agg.Count
		byChar[agg.Char] = agg
	}
	if top <= 0 {
		top = len(aggs)
	}
	chars := TopCharsByFrequency(aggs, top)

	if _, err := fmt.Fprintln(w, "Per-Character Output"); err != nil {
		return err
	}
	headers := []string{"Char", "Share", "Count", "Runs"}
	rows := make([][]string, 0, len(chars))
	for _, ch := range chars {
		agg := byChar[ch]
		share := 0.0
		if total > 0 {
			share = float64(agg.Count) / float64(total)
		}
		rows = append(rows, []string{
			charLabel(agg.Char),
			fmt.Sprintf("%.2f%%", share*100),
			fmt.Sprintf("%d", agg.Count),
			fmt.Sprintf("%d", agg.Runs),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func preview(text string, width int) string {
	if width <= 0 || displayWidth(text) <= width {
		return text
	}
	var b strings.Builder
	used := 0
	for _, r := range text {
		rw := displayWidth(string(r))
		if used+rw > width-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	b.WriteString("…")
	return b.String()
}
