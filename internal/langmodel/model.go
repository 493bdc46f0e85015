// Package langmodel implements a fixed-order character-level Markov model.
package langmodel

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"strings"
	"time"
)

// DefaultSeed is the seed used by the fixed (reproducible) generation mode.
const DefaultSeed = 20

var lineEndings = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// FallbackFunc observes a draw that no successor's cumulative probability reached.
type FallbackFunc func(window string, draw float64)

// Option configures a Model.
type Option func(*Model)

// WithSeed makes generation reproducible for the given seed.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.seed = seed
		m.seeded = true
	}
}

// WithFallbackHook registers fn to be called on every degenerate sample.
func WithFallbackHook(fn FallbackFunc) Option {
	return func(m *Model) {
		m.onFallback = fn
	}
}

// Model maps every window seen in training to its successor statistics.
type Model struct {
	windowLength int
	table        map[string][]CharStats
	order        []string

	rnd    *rand.Rand
	seed   int64
	seeded bool

	onFallback FallbackFunc
	fallbacks  int
}

// New returns an untrained model. Without WithSeed the random source is seeded
// from system entropy.
func New(windowLength int, opts ...Option) (*Model, error) {
	if windowLength <= 0 {
		return nil, ErrInvalidWindowLength
	}
	m := &Model{
		windowLength: windowLength,
		table:        make(map[string][]CharStats),
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.seeded {
		m.seed = entropySeed()
	}
	m.rnd = rand.New(rand.NewSource(m.seed))
	return m, nil
}

func entropySeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// WindowLength returns the number of characters in every window.
func (m *Model) WindowLength() int {
	return m.windowLength
}

// Seeded reports whether the model was built with a fixed seed.
func (m *Model) Seeded() bool {
	return m.seeded
}

// Seed returns the seed of the random source.
func (m *Model) Seed() int64 {
	return m.seed
}

// Fallbacks returns how many samples fell back to a space.
func (m *Model) Fallbacks() int {
	return m.fallbacks
}

// Len returns the number of distinct windows.
func (m *Model) Len() int {
	return len(m.table)
}

// Windows returns the trained windows in first-seen order.
func (m *Model) Windows() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Successors returns a copy of the statistics for window.
func (m *Model) Successors(window string) ([]CharStats, bool) {
	list, ok := m.table[window]
	if !ok {
		return nil, false
	}
	out := make([]CharStats, len(list))
	copy(out, list)
	return out, true
}

// NormalizeLineEndings replaces each \r\n, \n and \r with a single space.
func NormalizeLineEndings(text string) string {
	return lineEndings.Replace(text)
}

// Train counts every (window, next character) pair in corpus and then recomputes
// the probabilities of all windows. Counts accumulate across calls.
func (m *Model) Train(corpus string) error {
	runes := []rune(NormalizeLineEndings(corpus))
	if len(runes) <= m.windowLength {
		return &InvalidCorpusError{Length: len(runes), WindowLength: m.windowLength}
	}
	for i := 0; i+m.windowLength < len(runes); i++ {
		window := string(runes[i : i+m.windowLength])
		next := runes[i+m.windowLength]
		list, ok := m.table[window]
		if !ok {
			m.order = append(m.order, window)
		}
		m.table[window] = addChar(list, next)
	}
	m.recompute()
	return nil
}

func (m *Model) recompute() {
	for _, list := range m.table {
		calculateProbabilities(list)
	}
}

// Generate extends initial by n characters, each sampled from the successors of
// the trailing window. It fails on the first window missing from the model and
// returns no partial text in that case. A negative n is rejected.
func (m *Model) Generate(initial string, n int) (string, error) {
	if n < 0 {
		return "", ErrNegativeLength
	}
	buf := []rune(initial)
	for step := 0; step < n; step++ {
		start := len(buf) - m.windowLength
		if start < 0 {
			start = 0
		}
		window := string(buf[start:])
		list, ok := m.table[window]
		if !ok {
			return "", &UnknownWindowError{Window: window, Step: step}
		}
		draw := m.rnd.Float64()
		ch, ok := Sample(list, draw)
		if !ok {
			m.fallbacks++
			if m.onFallback != nil {
				m.onFallback(window, draw)
			}
		}
		buf = append(buf, ch)
	}
	return string(buf), nil
}

// String lists every window with its successors, one window per line.
func (m *Model) String() string {
	var b strings.Builder
	for _, window := range m.order {
		b.WriteString(window)
		b.WriteString(" : ")
		b.WriteString(formatList(m.table[window]))
		b.WriteByte('\n')
	}
	return b.String()
}
