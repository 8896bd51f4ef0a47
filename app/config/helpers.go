package config

import (
	"time"
)

// TTL returns the check interval for this type. Minutes win over days
// when both are set; zero means unset and the caller applies the
// document default.
func (ft *FeedType) TTL() time.Duration {
	if ft.TTLMinutes > 0 {
		return time.Duration(ft.TTLMinutes) * time.Minute
	}
	if ft.TTLDays > 0 {
		return time.Duration(ft.TTLDays) * 24 * time.Hour
	}
	return 0
}

// MaxAge returns the entry freshness window for this type. Hours win
// over days when both are set; zero means unset.
func (ft *FeedType) MaxAge() time.Duration {
	if ft.MaxAgeHours > 0 {
		return time.Duration(ft.MaxAgeHours) * time.Hour
	}
	if ft.MaxAgeDays > 0 {
		return time.Duration(ft.MaxAgeDays) * 24 * time.Hour
	}
	return 0
}
