package domain

import "time"

// Window is the 7-day date range the digest covers. Start is
// inclusive; End is the current UTC calendar day.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow computes the digest window ending on the given instant's
// UTC calendar day. The window is always exactly seven days wide,
// including across month and year boundaries.
func NewWindow(now time.Time) Window {
	end := now.UTC().Truncate(24 * time.Hour)
	return Window{
		Start: end.Add(-7 * 24 * time.Hour),
		End:   end,
	}
}

const isoDateLayout = "2006-01-02"

// StartDate returns the window's lower bound as an ISO date string,
// the form used in search queries, post titles and slugs.
func (w Window) StartDate() string {
	return w.Start.Format(isoDateLayout)
}

// EndDate returns the window's upper bound as an ISO date string.
func (w Window) EndDate() string {
	return w.End.Format(isoDateLayout)
}
