// Package dateparse turns free-form delivery time text into timestamps.
// It accepts the documented YYYY-MM-DD HH:MM format plus the day-first
// variants and relative day words users actually type.
package dateparse

import (
	"strings"
	"time"
)

// layouts are tried in order; the first match wins.
var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02",
}

// Parser parses delivery times in a fixed location.
type Parser struct {
	loc *time.Location
	now func() time.Time
}

// New creates a parser. A nil location falls back to time.Local.
func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{loc: loc, now: time.Now}
}

// Parse returns the parsed timestamp and true, or the zero value and false
// when the text is not recognized. It never fails with an error: the caller
// re-prompts the user on false.
func (p *Parser) Parse(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if t, ok := p.parseRelative(text); ok {
		return t, true
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, p.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRelative handles "сегодня"/"завтра" with an optional HH:MM tail.
func (p *Parser) parseRelative(text string) (time.Time, bool) {
	lower := strings.ToLower(text)

	var dayOffset int
	var rest string
	switch {
	case strings.HasPrefix(lower, "сегодня"):
		rest = strings.TrimSpace(lower[len("сегодня"):])
	case strings.HasPrefix(lower, "завтра"):
		dayOffset = 1
		rest = strings.TrimSpace(lower[len("завтра"):])
	default:
		return time.Time{}, false
	}

	day := p.now().In(p.loc).AddDate(0, 0, dayOffset)
	if rest == "" {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, p.loc), true
	}

	clock, err := time.Parse("15:04", rest)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, p.loc), true
}
