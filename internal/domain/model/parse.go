package model

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the tournament date format used by match sources.
const DateLayout = "20060102"

// ParseTourneyDate converts YYYYMMDD text to a UTC date. Numeric renderings
// with a fractional part ("20240115.0") are accepted since spreadsheet
// exports often store the column as a float.
func ParseTourneyDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return time.Time{}, false
		}
		s = strconv.FormatInt(int64(f), 10)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseScore sums the games won by each side across all sets of a score such
// as "7-6(4) 3-6 6-2". Tiebreak points in parentheses are dropped; tokens
// without a dash (RET, W/O, DEF) and malformed sets are ignored. ok is false
// when the text is blank.
func ParseScore(score string) (winner, loser int, ok bool) {
	s := strings.TrimSpace(score)
	if s == "" {
		return 0, 0, false
	}
	for _, set := range strings.Fields(s) {
		if !strings.Contains(set, "-") {
			continue
		}
		parts := strings.Split(set, "-")
		if len(parts) != 2 {
			continue
		}
		w, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		lRaw, _, _ := strings.Cut(parts[1], "(")
		l, err := strconv.Atoi(lRaw)
		if err != nil {
			continue
		}
		winner += w
		loser += l
	}
	return winner, loser, true
}
