// Package model provides data models for the ProxyScope platform.
package model

// Status represents the processing state of a queued work item.
//
// Lifecycle: NEW -> DONE on success, NEW -> ERROR on failure. ERROR items
// remain claimable so workers retry them on a later pass; DONE is terminal
// and never reconsidered by the queue.
type Status string

const (
	// StatusNew marks an item that has never been successfully processed.
	StatusNew Status = "NEW"
	// StatusError marks an item whose most recent attempt failed.
	StatusError Status = "ERROR"
	// StatusDone marks a terminally completed item.
	StatusDone Status = "DONE"
)

// ClaimableStatuses lists the states the work queue treats as pending.
var ClaimableStatuses = []Status{StatusNew, StatusError}

// Claimable reports whether a worker may pick up an item in this state.
func (s Status) Claimable() bool {
	return s == StatusNew || s == StatusError
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusError, StatusDone:
		return true
	}
	return false
}
