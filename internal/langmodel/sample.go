package langmodel

// fallbackChar is returned when no entry's cumulative probability reaches the draw.
const fallbackChar = ' '

// Sample picks the first entry, in list order, whose cumulative probability is at
// least draw. When none qualifies it returns a space and false.
func Sample(list []CharStats, draw float64) (rune, bool) {
	for _, cs := range list {
		if cs.CP >= draw {
			return cs.Char, true
		}
	}
	return fallbackChar, false
}
