package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/supporthub/supporthub-client/internal/domain"
)

// EventName identifies a server-pushed message kind.
type EventName string

const (
	EventTicketCreated  EventName = "ticketCreated"
	EventTicketUpdated  EventName = "ticketUpdated"
	EventTicketAssigned EventName = "assignedTicket"
)

// Event is a decoded push message. Payloads are validated at the channel
// boundary; handlers always receive a well-formed Ticket.
type Event struct {
	Name   EventName
	Ticket domain.Ticket
}

// Handler consumes one decoded event.
type Handler func(Event)

// frame is the wire format: one JSON object per websocket message.
type frame struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func decodeFrame(raw []byte) (*Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	switch f.Event {
	case EventTicketCreated, EventTicketUpdated, EventTicketAssigned:
	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(f.Data, &ticket); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", f.Event, err)
	}
	if ticket.ID == 0 {
		return nil, fmt.Errorf("%s payload missing ticket id", f.Event)
	}
	return &Event{Name: f.Event, Ticket: ticket}, nil
}
