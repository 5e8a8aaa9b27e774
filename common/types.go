package common

import "time"

// AddParams is the input for timer.add.
type AddParams struct {
	// ID uniquely names the timer. Adding an ID that is already scheduled
	// moves the existing timer to the new deadline.
	ID string `json:"id"`
	// Message is an arbitrary payload reported back when the timer fires.
	Message string `json:"message,omitempty"`
	// At is the absolute deadline. May be zero when Cron is set, in which
	// case the next cron occurrence is used.
	At time.Time `json:"at,omitempty"`
	// Cron makes the timer recurring: after each firing the next
	// occurrence is scheduled automatically.
	Cron string `json:"cron,omitempty"`
}

// AddResult is the response for timer.add.
type AddResult struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// CancelParams is the input for timer.cancel.
type CancelParams struct {
	ID string `json:"id"`
}

// CancelResult is the response for timer.cancel.
type CancelResult struct {
	Cancelled bool `json:"cancelled"`
}

// CancelAtParams is the input for timer.cancelAt.
type CancelAtParams struct {
	At time.Time `json:"at"`
}

// CancelAtResult is the response for timer.cancelAt.
type CancelAtResult struct {
	Cancelled int `json:"cancelled"`
}

// RescheduleParams is the input for timer.reschedule.
type RescheduleParams struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// RescheduleResult is the response for timer.reschedule.
type RescheduleResult struct {
	Rescheduled bool      `json:"rescheduled"`
	At          time.Time `json:"at"`
}

// TimerInfo describes one pending timer in timer.list responses.
type TimerInfo struct {
	ID      string    `json:"id"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
	Cron    string    `json:"cron,omitempty"`
}

// FiredInfo describes one already-delivered timer in timer.list responses.
type FiredInfo struct {
	ID      string    `json:"id"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
	FiredAt time.Time `json:"firedAt"`
}

// ListParams is the input for timer.list.
type ListParams struct {
	// IncludeFired also returns the recent firing history.
	IncludeFired bool `json:"includeFired,omitempty"`
}

// ListResult is the response for timer.list.
type ListResult struct {
	Timers []TimerInfo `json:"timers"`
	Fired  []FiredInfo `json:"fired,omitempty"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}
