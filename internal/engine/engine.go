package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/domain"
)

// Partition names one of the three disjoint ticket sequences.
type Partition string

const (
	PartitionOpen     Partition = "open"
	PartitionAssigned Partition = "assigned"
	PartitionClosed   Partition = "closed"
)

// DefaultPageSize matches the server UI's page length.
const DefaultPageSize = 12

// Engine owns the local ticket collection: three order-preserving,
// disjoint partitions kept convergent with server state. Snapshots and
// push events may interleave in any order; every apply operation is
// idempotent so replays and races resolve to the same partition.
//
// The engine is the only writer of the collection. Readers get copies.
type Engine struct {
	mu       sync.RWMutex
	open     []domain.Ticket
	assigned []domain.Ticket
	closed   []domain.Ticket
	resync   func()
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithResync installs a hook fired when an event references a ticket the
// engine does not know, so the owner can schedule a full snapshot reload
// to self-heal. The hook runs outside the engine lock.
func WithResync(fn func()) Option {
	return func(e *Engine) { e.resync = fn }
}

// New builds an empty engine.
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadSnapshot replaces the entire collection with the canonical server
// list, partitioning every ticket by its derived state.
func (e *Engine) LoadSnapshot(tickets []domain.Ticket) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = e.open[:0]
	e.assigned = e.assigned[:0]
	e.closed = e.closed[:0]
	for _, t := range tickets {
		e.place(t)
	}
	e.logger.Debug("snapshot loaded",
		zap.Int("open", len(e.open)),
		zap.Int("assigned", len(e.assigned)),
		zap.Int("closed", len(e.closed)))
}

// ApplyCreated inserts a new ticket, deduplicating by id: a replayed
// created event for a known ticket is a no-op.
func (e *Engine) ApplyCreated(t domain.Ticket) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, _, ok := e.locate(t.ID); ok {
		return
	}
	e.place(t)
}

// ApplyUpdated replaces the matching ticket wherever it currently lives.
// If the update changes its classification (finished flipped true, say),
// the ticket moves to the correct partition, never duplicating. Updates
// for unknown ids are no-ops that request a resync.
func (e *Engine) ApplyUpdated(t domain.Ticket) {
	e.mu.Lock()
	current, idx, ok := e.locate(t.ID)
	if !ok {
		e.mu.Unlock()
		e.unknown("updated", t.ID)
		return
	}
	if current == partitionFor(t.State()) {
		(*e.partitionRef(current))[idx] = t
		e.mu.Unlock()
		return
	}
	e.removeAt(current, idx)
	e.place(t)
	e.mu.Unlock()
}

// ApplyAssigned moves the ticket out of open and appends it to assigned
// (or to closed, should the payload already be finished). Assignment
// events for unknown ids are no-ops that request a resync; replays for an
// already assigned ticket just refresh it in place.
func (e *Engine) ApplyAssigned(t domain.Ticket) {
	e.ApplyUpdated(t)
}

// ViewOf returns one page of the named partition in stable order. Pages
// are 1-based; bounds outside the available range yield an empty slice.
func (e *Engine) ViewOf(p Partition, page, pageSize int) []domain.Ticket {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	tickets := e.partition(p)
	start := (page - 1) * pageSize
	if page < 1 || start >= len(tickets) {
		return []domain.Ticket{}
	}
	end := start + pageSize
	if end > len(tickets) {
		end = len(tickets)
	}
	out := make([]domain.Ticket, end-start)
	copy(out, tickets[start:end])
	return out
}

// Len returns the size of the named partition.
func (e *Engine) Len(p Partition) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.partition(p))
}

// place appends t to the partition its state dictates. Caller holds the
// write lock and guarantees t.ID is absent.
func (e *Engine) place(t domain.Ticket) {
	switch t.State() {
	case domain.TicketStateClosed:
		e.closed = append(e.closed, t)
	case domain.TicketStateAssigned:
		e.assigned = append(e.assigned, t)
	default:
		e.open = append(e.open, t)
	}
}

// locate finds the partition and index currently holding id.
func (e *Engine) locate(id int) (Partition, int, bool) {
	for _, p := range []Partition{PartitionOpen, PartitionAssigned, PartitionClosed} {
		for i := range *e.partitionRef(p) {
			if (*e.partitionRef(p))[i].ID == id {
				return p, i, true
			}
		}
	}
	return "", 0, false
}

func (e *Engine) removeAt(p Partition, idx int) {
	ref := e.partitionRef(p)
	*ref = append((*ref)[:idx], (*ref)[idx+1:]...)
}

func (e *Engine) partition(p Partition) []domain.Ticket {
	switch p {
	case PartitionAssigned:
		return e.assigned
	case PartitionClosed:
		return e.closed
	default:
		return e.open
	}
}

func (e *Engine) partitionRef(p Partition) *[]domain.Ticket {
	switch p {
	case PartitionAssigned:
		return &e.assigned
	case PartitionClosed:
		return &e.closed
	default:
		return &e.open
	}
}

func (e *Engine) unknown(kind string, id int) {
	e.logger.Debug("event for unknown ticket", zap.String("kind", kind), zap.Int("ticket_id", id))
	if e.resync != nil {
		e.resync()
	}
}

func partitionFor(s domain.TicketState) Partition {
	switch s {
	case domain.TicketStateClosed:
		return PartitionClosed
	case domain.TicketStateAssigned:
		return PartitionAssigned
	default:
		return PartitionOpen
	}
}
