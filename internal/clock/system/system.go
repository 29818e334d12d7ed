// Package system provides a real clock implementation.
package system

import "time"

// Clock implements the engines' Clock interface using time.Now.
// Timestamps stay in local time: the day-scoped read path filters rows
// by the calendar date of create_timestamp, and that date has to match
// the operator's local crawl day.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time.
func (Clock) Now() time.Time {
	return time.Now()
}
