package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the canonical trip date format.
const DateLayout = "2006-01-02"

var looseDate = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)

// NormalizeDate accepts YYYY-MM-DD, YYYY/MM/DD and their single-digit month/day
// variants and returns the canonical YYYY-MM-DD form.
func NormalizeDate(s string) (string, error) {
	m := looseDate.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	canonical := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := time.Parse(DateLayout, canonical); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return canonical, nil
}

// DateRange is an inclusive filter over canonical trip dates. Empty bounds are open.
type DateRange struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

// NewDateRange validates both bounds. When only start is given the range ends
// today (per now).
func NewDateRange(start, end string, now time.Time) (DateRange, error) {
	var r DateRange
	if start != "" {
		if _, err := time.Parse(DateLayout, start); err != nil {
			return r, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
		}
		r.Start = start
	}
	if end != "" {
		if _, err := time.Parse(DateLayout, end); err != nil {
			return r, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
		}
		r.End = end
	}
	if r.Start != "" && r.End == "" {
		r.End = now.Format(DateLayout)
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		return r, ErrInvalidDateRange
	}
	return r, nil
}

// Includes reports whether the canonical date d falls inside the range.
func (r DateRange) Includes(d string) bool {
	if r.Start != "" && d < r.Start {
		return false
	}
	if r.End != "" && d > r.End {
		return false
	}
	return true
}

// Key returns a stable identifier usable in cache keys.
func (r DateRange) Key() string {
	start, end := r.Start, r.End
	if start == "" {
		start = "-"
	}
	if end == "" {
		end = "-"
	}
	return start + ":" + end
}
