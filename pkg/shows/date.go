package shows

import (
	"fmt"
	"time"

	"github.com/agentstation/mediathek/pkg/constants"
)

const day = 24 * time.Hour

// Date is a calendar date counted in days since 1970-01-01.
// The zero value means the date is unknown.
type Date int32

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, dayOfMonth int) Date {
	return DateOf(time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(midnight.Unix() / int64(day/time.Second))
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*int64(day/time.Second), 0).UTC()
}

// IsZero reports whether the date is unknown.
func (d Date) IsZero() bool {
	return d == 0
}

// String formats the date as YYYY-MM-DD, or "" when unknown.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(constants.DateFormat)
}

// FormatClock formats a time of day or a duration as hh:mm:ss.
func FormatClock(v time.Duration) string {
	if v < 0 {
		v = 0
	}
	total := int64(v / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
