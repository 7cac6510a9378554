package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// ParseWeekday accepts an English weekday name, its three-letter form, or
// 0-6 with 0 as Sunday. Empty means Monday.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return time.Monday, nil
	}
	if wd, ok := weekdays[v]; ok {
		return wd, nil
	}
	if len(v) == 3 {
		for name, wd := range weekdays {
			if strings.HasPrefix(name, v) {
				return wd, nil
			}
		}
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
