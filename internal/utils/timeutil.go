package utils

import (
	"fmt"
	"strings"
	"time"
)

// localDateTimeLayouts are zone-less ISO-8601 forms sent by the game client.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseGameTime parses an ISO-8601 date-time. Values without an offset are read in loc,
// values with one keep their instant.
func ParseGameTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date-time")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q: expected ISO-8601 like 2006-01-02T15:04:05", value)
}
