package api

import "github.com/supporthub/supporthub-client/internal/domain"

// UserInput is the payload for creating or updating an account.
type UserInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	SectorID int    `json:"sectorId"`
	IsAdmin  bool   `json:"isAdmin"`
	IsActive bool   `json:"isActive"`
	RoleID   int    `json:"roleId"`
}

// FinalizePatch closes a ticket with resolution notes. Finalization is
// one-way; there is no un-finalize operation.
type FinalizePatch struct {
	Notes string `json:"notes"`
}

// AssignPatch claims a ticket for the calling administrator. The server
// derives the assignee from the bearer token, so the body carries nothing.
type AssignPatch struct{}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTicketRequest struct {
	ProblemDescription string `json:"problemDescription"`
}

type createTicketTypeRequest struct {
	Name string `json:"name"`
}

type finalizeTicketRequest struct {
	Finished bool   `json:"finished"`
	Notes    string `json:"notes,omitempty"`
}

// Response envelopes. Every endpoint wraps its payload in a single-key
// object; callers receive the unwrapped value.
type tokenEnvelope struct {
	Token string `json:"token"`
}

type userEnvelope struct {
	User domain.User `json:"user"`
}

type usersEnvelope struct {
	Users []domain.User `json:"users"`
}

type ticketEnvelope struct {
	Ticket domain.Ticket `json:"ticket"`
}

type ticketsEnvelope struct {
	Tickets []domain.Ticket `json:"tickets"`
}

type sectorsEnvelope struct {
	Sectors []domain.Sector `json:"sectors"`
}

type ticketTypeEnvelope struct {
	TicketType domain.TicketType `json:"ticketType"`
}

type ticketTypesEnvelope struct {
	TicketTypes []domain.TicketType `json:"ticketTypes"`
}

type totalEnvelope struct {
	Total int `json:"total"`
}

type byTypeEnvelope struct {
	TicketsByType []domain.TypeCount `json:"ticketsByType"`
}

type bySectorEnvelope struct {
	TicketsBySector []domain.SectorCount `json:"ticketsBySector"`
}
