package domain

import "time"

// TicketState enumerates the mutually exclusive lifecycle states of a ticket.
type TicketState string

const (
	TicketStateOpen     TicketState = "OPEN"
	TicketStateAssigned TicketState = "ASSIGNED"
	TicketStateClosed   TicketState = "CLOSED"
)

// UserRef is the embedded display reference to a user.
type UserRef struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}

// SectorRef is the embedded display reference to a sector.
type SectorRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Ticket is a reported problem tracked through open/assigned/closed states.
type Ticket struct {
	ID                 int        `json:"id"`
	Requester          string     `json:"requester"`
	ProblemDescription string     `json:"problemDescription"`
	Notes              string     `json:"notes,omitempty"`
	Finished           bool       `json:"finished"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	UserID             int        `json:"userId"`
	SectorID           int        `json:"sectorId"`
	AssignedTo         *UserRef   `json:"assignedTo,omitempty"`
	Sector             *SectorRef `json:"Sector,omitempty"`
}

// State derives the current lifecycle state. Closure dominates assignment:
// a finished ticket is closed regardless of assignee.
func (t *Ticket) State() TicketState {
	switch {
	case t.Finished:
		return TicketStateClosed
	case t.AssignedTo != nil:
		return TicketStateAssigned
	default:
		return TicketStateOpen
	}
}
