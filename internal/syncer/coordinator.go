package syncer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/domain"
	"github.com/supporthub/supporthub-client/internal/engine"
	"github.com/supporthub/supporthub-client/internal/realtime"
)

// TicketAPI is the slice of the gateway the coordinator needs.
type TicketAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	ListOwnTickets(ctx context.Context) ([]domain.Ticket, error)
}

// Subscriber is the push side of the realtime channel.
type Subscriber interface {
	On(name realtime.EventName, h realtime.Handler)
	Off(name realtime.EventName, h realtime.Handler)
}

// Coordinator wires push events into the reconciliation engine and keeps
// the collection convergent. After every push event and after any local
// mutation the owner reports, it schedules a full snapshot reload rather
// than trusting the incremental edit alone: the server is the source of
// truth and full reloads are cheap at helpdesk mutation rates.
type Coordinator struct {
	api     TicketAPI
	channel Subscriber
	engine  *engine.Engine
	logger  *zap.Logger

	onCreated  realtime.Handler
	onUpdated  realtime.Handler
	onAssigned realtime.Handler

	admin    bool
	onChange func()

	reloads  chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithOnChange installs a callback invoked after every collection change,
// for owners that re-render on updates.
func WithOnChange(fn func()) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// New builds a coordinator around an engine, a gateway and a channel.
func New(api TicketAPI, channel Subscriber, eng *engine.Engine, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		api:     api,
		channel: channel,
		engine:  eng,
		logger:  logger,
		reloads: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start fetches the viewer profile, loads the initial snapshot and
// subscribes to push events. Administrators see every ticket; everyone
// else sees only their own.
func (c *Coordinator) Start(ctx context.Context) error {
	user, err := c.api.Me(ctx)
	if err != nil {
		return err
	}
	c.admin = user.IsAdmin

	tickets, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.engine.LoadSnapshot(tickets)
	c.notify()

	c.onCreated = func(ev realtime.Event) {
		c.engine.ApplyCreated(ev.Ticket)
		c.notify()
		c.RequestReload()
	}
	c.onUpdated = func(ev realtime.Event) {
		c.engine.ApplyUpdated(ev.Ticket)
		c.notify()
		c.RequestReload()
	}
	c.onAssigned = func(ev realtime.Event) {
		c.engine.ApplyAssigned(ev.Ticket)
		c.notify()
		c.RequestReload()
	}
	c.channel.On(realtime.EventTicketCreated, c.onCreated)
	c.channel.On(realtime.EventTicketUpdated, c.onUpdated)
	c.channel.On(realtime.EventTicketAssigned, c.onAssigned)

	c.wg.Add(1)
	go c.reloadLoop()
	return nil
}

// RequestReload schedules a full snapshot reload. Pending requests
// coalesce: a burst of events costs one fetch.
func (c *Coordinator) RequestReload() {
	select {
	case c.reloads <- struct{}{}:
	default:
	}
}

// Stop unsubscribes the push handlers and halts the reload loop. A reload
// in flight when Stop is called discards its result instead of mutating
// the collection after the owner is gone.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		if c.onCreated != nil {
			c.channel.Off(realtime.EventTicketCreated, c.onCreated)
			c.channel.Off(realtime.EventTicketUpdated, c.onUpdated)
			c.channel.Off(realtime.EventTicketAssigned, c.onAssigned)
		}
		close(c.stopped)
	})
	c.wg.Wait()
}

func (c *Coordinator) reloadLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopped:
			return
		case <-c.reloads:
		}

		tickets, err := c.fetch(context.Background())
		select {
		case <-c.stopped:
			return
		default:
		}
		if err != nil {
			c.logger.Warn("snapshot reload failed", zap.Error(err))
			continue
		}
		c.engine.LoadSnapshot(tickets)
		c.notify()
	}
}

func (c *Coordinator) fetch(ctx context.Context) ([]domain.Ticket, error) {
	if c.admin {
		return c.api.ListTickets(ctx)
	}
	return c.api.ListOwnTickets(ctx)
}

func (c *Coordinator) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
