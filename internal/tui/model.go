// Package tui provides the Bubble Tea text viewer.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/charlm/internal/langmodel"
	"github.com/verte-zerg/charlm/internal/model"
	"github.com/verte-zerg/charlm/internal/stats"
	"github.com/verte-zerg/charlm/internal/store"
	"github.com/verte-zerg/charlm/internal/textwrap"
)

// Model implements the Bubble Tea viewer over a trained language model.
type Model struct {
	config model.Config
	store  *store.Store
	lm     *langmodel.Model

	width  int
	height int
	vp     viewport.Model

	text   string
	runs   int
	errMsg string
}

var (
	initialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a viewer and generates the first text. st may be nil to
// skip recording runs.
func NewModel(cfg model.Config, st *store.Store, lm *langmodel.Model) *Model {
	m := &Model{
		config: cfg,
		store:  st,
		lm:     lm,
		vp:     viewport.New(0, 0),
	}
	m.regenerate()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r", " ":
			m.regenerate()
			return m, nil
		case "g", "home":
			m.vp.GotoTop()
			return m, nil
		case "G", "end":
			m.vp.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return m.renderText(0)
	}
	footer := m.renderFooter()
	return m.vp.View() + "\n" + footer
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.vp.Width = m.width
	m.vp.Height = maxInt(1, m.height-footerHeight(m.errMsg))
	m.vp.SetContent(m.renderText(m.width))
}

func footerHeight(errMsg string) int {
	if errMsg != "" {
		return 2
	}
	return 1
}

func (m *Model) renderText(width int) string {
	if m.text == "" {
		return ""
	}
	wrapped := textwrap.Wrap(m.text, width)
	initialRunes := len([]rune(m.config.Initial))
	if initialRunes == 0 {
		return textStyle.Render(wrapped)
	}
	cut := wrappedOffset([]rune(m.text), []rune(wrapped), initialRunes)
	head := string([]rune(wrapped)[:cut])
	tail := string([]rune(wrapped)[cut:])
	return initialStyle.Render(head) + textStyle.Render(tail)
}

// wrappedOffset maps the rune offset n of original to the matching offset in
// wrapped. A newline in wrapped either replaces a space of original or was
// inserted by a hard break.
func wrappedOffset(original, wrapped []rune, n int) int {
	oi := 0
	for wi, r := range wrapped {
		if oi >= n {
			return wi
		}
		if r == original[oi] || original[oi] == ' ' {
			oi++
		}
	}
	return len(wrapped)
}

func (m *Model) renderFooter() string {
	mode := "random"
	if m.lm.Seeded() {
		mode = fmt.Sprintf("fixed seed %d", m.lm.Seed())
	}
	segments := []string{
		fmt.Sprintf("Window %d", m.lm.WindowLength()),
		mode,
		fmt.Sprintf("Runs %d", m.runs),
		fmt.Sprintf("Fallbacks %d", m.lm.Fallbacks()),
		"r regenerate · q quit",
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.errMsg != "" {
		footer = errorStyle.Render(m.errMsg) + "\n" + footer
	}
	return footer
}

func (m *Model) regenerate() {
	startedAt := time.Now()
	fallbacksBefore := m.lm.Fallbacks()
	text, err := m.lm.Generate(m.config.Initial, m.config.Length)
	if err != nil {
		m.errMsg = err.Error()
		m.updateLayout()
		return
	}
	m.errMsg = ""
	m.text = text
	m.runs++
	m.updateLayout()
	m.vp.GotoTop()
	m.recordRun(startedAt, time.Now(), text, m.lm.Fallbacks()-fallbacksBefore)
}

func (m *Model) recordRun(startedAt, endedAt time.Time, text string, fallbacks int) {
	if m.store == nil || !m.config.History {
		return
	}
	run := model.RunStats{
		StartedAt:  startedAt,
		EndedAt:    endedAt,
		CorpusPath: m.config.CorpusPath,
		Window:     m.lm.WindowLength(),
		Length:     m.config.Length,
		Seeded:     m.lm.Seeded(),
		Seed:       m.lm.Seed(),
		Initial:    m.config.Initial,
		Output:     text,
		Windows:    m.lm.Len(),
		Fallbacks:  fallbacks,
		DurationMs: endedAt.Sub(startedAt).Milliseconds(),
	}
	generated := string([]rune(text)[len([]rune(m.config.Initial)):])
	if _, err := m.store.InsertRun(context.Background(), run, stats.CountChars(generated)); err != nil {
		logErrf("failed to save run: %v\n", err)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
