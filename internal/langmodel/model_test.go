package langmodel_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/charlm/internal/langmodel"
)

const tolerance = 1e-9

func trained(t *testing.T, window int, corpus string, opts ...langmodel.Option) *langmodel.Model {
	t.Helper()
	m, err := langmodel.New(window, opts...)
	require.NoError(t, err)
	require.NoError(t, m.Train(corpus))
	return m
}

func TestNewRejectsNonPositiveWindow(t *testing.T) {
	for _, w := range []int{0, -3} {
		_, err := langmodel.New(w)
		require.ErrorIs(t, err, langmodel.ErrInvalidWindowLength)
	}
}

func TestTrainCountsHandComputedTable(t *testing.T) {
	// a->a, a->b, b->a, a->b
	m := trained(t, 1, "aabab", langmodel.WithSeed(1))

	require.Equal(t, []string{"a", "b"}, m.Windows())

	a, ok := m.Successors("a")
	require.True(t, ok)
	require.Len(t, a, 2)
	require.Equal(t, 'a', a[0].Char)
	require.Equal(t, 1, a[0].Count)
	require.Equal(t, 'b', a[1].Char)
	require.Equal(t, 2, a[1].Count)
	require.InDelta(t, 1.0/3, a[0].P, tolerance)
	require.InDelta(t, 2.0/3, a[1].P, tolerance)
	require.InDelta(t, 1.0/3, a[0].CP, tolerance)
	require.InDelta(t, 1.0, a[1].CP, tolerance)

	b, ok := m.Successors("b")
	require.True(t, ok)
	require.Equal(t, []langmodel.CharStats{{Char: 'a', Count: 1, P: 1, CP: 1}}, b)
}

func TestTrainKeepsFirstSeenSuccessorOrder(t *testing.T) {
	m := trained(t, 2, "xyzxyaxyzxyb")
	list, ok := m.Successors("xy")
	require.True(t, ok)
	chars := make([]rune, len(list))
	for i, cs := range list {
		chars[i] = cs.Char
	}
	require.Equal(t, []rune{'z', 'a', 'b'}, chars)
}

func TestTrainProbabilityInvariants(t *testing.T) {
	corpus := "the quick brown fox jumps over the lazy dog; the dog sleeps, the fox runs.\n" +
		"Then the fox returns\r\nand the dog wakes\rup."
	for _, window := range []int{1, 2, 3, 5} {
		m := trained(t, window, corpus)
		for _, w := range m.Windows() {
			require.Len(t, []rune(w), window)
			list, _ := m.Successors(w)
			sum := 0.0
			prev := 0.0
			seen := map[rune]bool{}
			for _, cs := range list {
				require.False(t, seen[cs.Char], "duplicate successor %q in window %q", cs.Char, w)
				seen[cs.Char] = true
				require.GreaterOrEqual(t, cs.Count, 1)
				sum += cs.P
				require.GreaterOrEqual(t, cs.CP, prev, "cp must not decrease in window %q", w)
				prev = cs.CP
			}
			require.InDelta(t, 1.0, sum, tolerance)
			require.InDelta(t, sum, list[len(list)-1].CP, tolerance)
		}
	}
}

func TestTrainNormalizesLineEndings(t *testing.T) {
	m := trained(t, 1, "a\r\nb\nc\rd")
	require.Equal(t, []string{"a", " ", "b", "c"}, m.Windows())
	for _, w := range m.Windows() {
		require.NotContains(t, w, "\n")
		require.NotContains(t, w, "\r")
	}
	succ, ok := m.Successors(" ")
	require.True(t, ok)
	require.Len(t, succ, 3)
}

func TestTrainRejectsShortCorpus(t *testing.T) {
	m, err := langmodel.New(3)
	require.NoError(t, err)

	for _, corpus := range []string{"", "ab", "abc"} {
		err := m.Train(corpus)
		require.ErrorIs(t, err, langmodel.ErrInvalidCorpus)
		var ice *langmodel.InvalidCorpusError
		require.True(t, errors.As(err, &ice))
		require.Equal(t, 3, ice.WindowLength)
		require.Equal(t, len(corpus), ice.Length)
	}
	require.Zero(t, m.Len())

	require.NoError(t, m.Train("abcd"))
	require.Equal(t, 1, m.Len())
}

func TestTrainRecomputationIsIdempotent(t *testing.T) {
	m := trained(t, 2, "abracadabra abracadabra")
	before := map[string][]langmodel.CharStats{}
	for _, w := range m.Windows() {
		before[w], _ = m.Successors(w)
	}

	// A corpus of exactly one window adds one count; retraining the old
	// windows must otherwise reproduce the same values.
	require.NoError(t, m.Train("zz!"))
	for w, list := range before {
		after, ok := m.Successors(w)
		require.True(t, ok)
		require.Equal(t, list, after)
	}
}

func TestTrainAccumulatesAcrossCalls(t *testing.T) {
	m := trained(t, 1, "ab")
	require.NoError(t, m.Train("ac"))
	list, _ := m.Successors("a")
	require.Len(t, list, 2)
	require.InDelta(t, 0.5, list[0].P, tolerance)
	require.InDelta(t, 1.0, list[1].CP, tolerance)
}

func TestGenerateDeterministicCycle(t *testing.T) {
	m := trained(t, 2, "abcabcabc", langmodel.WithSeed(langmodel.DefaultSeed))
	out, err := m.Generate("ab", 5)
	require.NoError(t, err)
	require.Equal(t, "abcabca", out)
}

func TestGenerateSameSeedSameOutput(t *testing.T) {
	corpus := strings.Repeat("she sells sea shells by the sea shore and the shells she sells are sea shells ", 4)
	first := trained(t, 2, corpus, langmodel.WithSeed(langmodel.DefaultSeed))
	second := trained(t, 2, corpus, langmodel.WithSeed(langmodel.DefaultSeed))

	a, err := first.Generate("sh", 200)
	require.NoError(t, err)
	b, err := second.Generate("sh", 200)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, []rune(a), 202)
	require.True(t, first.Seeded())
	require.Equal(t, int64(langmodel.DefaultSeed), first.Seed())
}

func TestGenerateUnseededVaries(t *testing.T) {
	corpus := strings.Repeat("abacadaeafag", 10)
	distinct := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		m := trained(t, 1, corpus)
		require.False(t, m.Seeded())
		out, err := m.Generate("a", 64)
		require.NoError(t, err)
		distinct[out] = struct{}{}
	}
	require.Greater(t, len(distinct), 1)
}

func TestGenerateZeroCharactersReturnsInitial(t *testing.T) {
	m := trained(t, 3, "abcdef")
	for _, initial := range []string{"", "x", "zzzz"} {
		out, err := m.Generate(initial, 0)
		require.NoError(t, err)
		require.Equal(t, initial, out)
	}
}

func TestGenerateRejectsNegativeLength(t *testing.T) {
	m := trained(t, 2, "abcabc", langmodel.WithSeed(langmodel.DefaultSeed))
	out, err := m.Generate("ab", -1)
	require.ErrorIs(t, err, langmodel.ErrNegativeLength)
	require.Empty(t, out)
}

func TestGenerateShortInitialTextIsUnknownWindow(t *testing.T) {
	m := trained(t, 2, "aaaa")
	_, err := m.Generate("a", 3)
	require.ErrorIs(t, err, langmodel.ErrUnknownWindow)
	var uwe *langmodel.UnknownWindowError
	require.True(t, errors.As(err, &uwe))
	require.Equal(t, "a", uwe.Window)
	require.Equal(t, 0, uwe.Step)
}

func TestGenerateUsesTrailingWindowOfLongInitialText(t *testing.T) {
	m := trained(t, 2, "abcabcabc", langmodel.WithSeed(3))
	out, err := m.Generate("xyzab", 3)
	require.NoError(t, err)
	require.Equal(t, "xyzabcab", out)
}

func TestGenerateUnknownWindowMidway(t *testing.T) {
	// "ab" -> 'c' is known, "bc" never appears as a window.
	m := trained(t, 2, "abc", langmodel.WithSeed(1))
	out, err := m.Generate("ab", 2)
	require.Empty(t, out)
	var uwe *langmodel.UnknownWindowError
	require.ErrorAs(t, err, &uwe)
	require.Equal(t, "bc", uwe.Window)
	require.Equal(t, 1, uwe.Step)
}

func TestGenerateHandlesMultibyteRunes(t *testing.T) {
	m := trained(t, 1, "жёжёжё", langmodel.WithSeed(9))
	out, err := m.Generate("ж", 3)
	require.NoError(t, err)
	require.Equal(t, "жёжё", out)
}

func TestStringListsWindowsInOrder(t *testing.T) {
	m := trained(t, 1, "aabab")
	lines := strings.Split(strings.TrimSuffix(m.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "a : ((a 1 "))
	require.True(t, strings.HasPrefix(lines[1], "b : ((a 1 1 1))"))
}

func TestSuccessorsReturnsCopy(t *testing.T) {
	m := trained(t, 1, "ab")
	list, _ := m.Successors("a")
	list[0].Count = 99
	again, _ := m.Successors("a")
	require.Equal(t, 1, again[0].Count)

	_, ok := m.Successors("zz")
	require.False(t, ok)
}

func TestNormalizeLineEndings(t *testing.T) {
	require.Equal(t, "a b c d", langmodel.NormalizeLineEndings("a\r\nb\nc\rd"))
	require.Equal(t, "a  b", langmodel.NormalizeLineEndings("a\n\nb"))
}
