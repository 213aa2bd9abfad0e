package entity

import "fmt"

// SessionStatus is the scheduling state shared by events and workshops
type SessionStatus string

const (
	SessionStatusUpcoming  SessionStatus = "upcoming"
	SessionStatusOngoing   SessionStatus = "ongoing"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusUpcoming, SessionStatusOngoing, SessionStatusCompleted, SessionStatusCancelled:
		return true
	}
	return false
}

func ParseSessionStatus(s string) (SessionStatus, error) {
	status := SessionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid session status: %q", s)
	}
	return status, nil
}
