package shared

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for accounting dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date string.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}
