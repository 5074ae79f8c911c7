package domain

import "time"

// User is the resolved profile of an account, as returned by the server.
type User struct {
	ID        int        `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"isAdmin"`
	IsActive  bool       `json:"isActive"`
	RoleID    int        `json:"roleId"`
	SectorID  int        `json:"sectorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Sector    *SectorRef `json:"Sector,omitempty"`
	Tickets   []Ticket   `json:"Ticket,omitempty"`
}

// Sector is an organizational unit a user or ticket belongs to.
type Sector struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TicketType categorizes tickets for reporting.
type TicketType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TypeCount aggregates ticket volume per type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// SectorCount aggregates ticket volume per sector.
type SectorCount struct {
	SectorID int    `json:"sectorId"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}
