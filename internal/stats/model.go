package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verte-zerg/charlm/internal/langmodel"
)

// WindowSummary describes one trained window for reporting.
type WindowSummary struct {
	Window     string
	Total      int
	Successors []langmodel.CharStats
}

// TopWindows returns the n windows with the most observations. Ties keep the
// order in which windows were first seen.
func TopWindows(m *langmodel.Model, n int) []WindowSummary {
	windows := m.Windows()
	out := make([]WindowSummary, 0, len(windows))
	for _, w := range windows {
		list, _ := m.Successors(w)
		total := 0
		for _, cs := range list {
			total += cs.Count
		}
		out = append(out, WindowSummary{Window: w, Total: total, Successors: list})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// RenderModel prints the model size and its busiest windows.
func RenderModel(w io.Writer, m *langmodel.Model, top, maxSuccessors int) error {
	windows := TopWindows(m, 0)
	observations := 0
	for _, ws := range windows {
		observations += ws.Total
	}
	if _, err := fmt.Fprintf(w, "Window length: %d\n", m.WindowLength()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Windows: %d\n", len(windows)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Observations: %d\n\n", observations); err != nil {
		return err
	}
	if len(windows) == 0 {
		return nil
	}
	if top > 0 && top < len(windows) {
		windows = windows[:top]
	}

	headers := []string{"Window", "Total", "Next", "Distribution"}
	rows := make([][]string, 0, len(windows))
	for _, ws := range windows {
		probs := make([]float64, len(ws.Successors))
		for i, cs := range ws.Successors {
			probs[i] = cs.P
		}
		rows = append(rows, []string{
			windowLabel(ws.Window),
			fmt.Sprintf("%d", ws.Total),
			formatSuccessors(ws.Successors, maxSuccessors),
			Sparkline(probs),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatSuccessors(list []langmodel.CharStats, limit int) string {
	shown := list
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, cs := range shown {
		parts = append(parts, fmt.Sprintf("%s:%.2f", charLabel(string(cs.Char)), cs.P))
	}
	if len(shown) < len(list) {
		parts = append(parts, fmt.Sprintf("+%d", len(list)-len(shown)))
	}
	return strings.Join(parts, " ")
}
