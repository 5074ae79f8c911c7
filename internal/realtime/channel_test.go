package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/config"
	"github.com/supporthub/supporthub-client/internal/domain"
)

// wsServer is a minimal push server: it records every accepted connection
// and lets tests send frames or sever the link.
type wsServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu        sync.Mutex
	conns     []*websocket.Conn
	connTimes []time.Time
	accepted  chan *websocket.Conn
}

func newWSServer(t *testing.T) (*wsServer, *httptest.Server) {
	s := &wsServer{t: t, accepted: make(chan *websocket.Conn, 8)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.connTimes = append(s.connTimes, time.Now())
		s.mu.Unlock()
		s.accepted <- conn
		// Drain until the peer goes away.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *wsServer) waitConn(t *testing.T, timeout time.Duration) *websocket.Conn {
	select {
	case conn := <-s.accepted:
		return conn
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a connection")
		return nil
	}
}

func (s *wsServer) send(t *testing.T, conn *websocket.Conn, name EventName, ticket domain.Ticket) {
	data, err := json.Marshal(ticket)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(frame{Event: name, Data: data}))
}

func (s *wsServer) connCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testConfig(url string) config.RealtimeConfig {
	return config.RealtimeConfig{
		URL:                 url,
		DialTimeoutMS:       2000,
		ReconnectDelayMS:    1000,
		ReconnectDelayMaxMS: 5000,
	}
}

func sampleTicket(id int) domain.Ticket {
	return domain.Ticket{
		ID:                 id,
		Requester:          "alice",
		ProblemDescription: "vpn down",
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
		UserID:             1,
		SectorID:           1,
	}
}

func TestChannelDeliversEventsInOrder(t *testing.T) {
	server, srv := newWSServer(t)
	channel := NewChannel(testConfig(wsURL(srv)), zap.NewNop())
	defer channel.Close() //nolint:errcheck

	var mu sync.Mutex
	var got []int
	channel.On(EventTicketCreated, func(ev Event) {
		mu.Lock()
		got = append(got, ev.Ticket.ID)
		mu.Unlock()
	})

	conn := server.waitConn(t, 3*time.Second)
	for i := 1; i <= 5; i++ {
		server.send(t, conn, EventTicketCreated, sampleTicket(i))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 5
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestHandlersFireInRegistrationOrder(t *testing.T) {
	server, srv := newWSServer(t)
	channel := NewChannel(testConfig(wsURL(srv)), zap.NewNop())
	defer channel.Close() //nolint:errcheck

	var mu sync.Mutex
	var order []string
	channel.On(EventTicketUpdated, func(Event) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	channel.On(EventTicketUpdated, func(Event) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})

	conn := server.waitConn(t, 3*time.Second)
	server.send(t, conn, EventTicketUpdated, sampleTicket(1))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestOffRemovesHandler(t *testing.T) {
	server, srv := newWSServer(t)
	channel := NewChannel(testConfig(wsURL(srv)), zap.NewNop())
	defer channel.Close() //nolint:errcheck

	var mu sync.Mutex
	kept := 0
	removed := 0
	keep := func(Event) {
		mu.Lock()
		kept++
		mu.Unlock()
	}
	drop := func(Event) {
		mu.Lock()
		removed++
		mu.Unlock()
	}
	channel.On(EventTicketCreated, keep)
	channel.On(EventTicketCreated, drop)
	channel.Off(EventTicketCreated, drop)

	conn := server.waitConn(t, 3*time.Second)
	server.send(t, conn, EventTicketCreated, sampleTicket(1))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return kept == 1
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, removed)
}

func TestMalformedFramesAreDropped(t *testing.T) {
	server, srv := newWSServer(t)
	channel := NewChannel(testConfig(wsURL(srv)), zap.NewNop())
	defer channel.Close() //nolint:errcheck

	var mu sync.Mutex
	var got []int
	channel.On(EventTicketCreated, func(ev Event) {
		mu.Lock()
		got = append(got, ev.Ticket.ID)
		mu.Unlock()
	})

	conn := server.waitConn(t, 3*time.Second)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"somethingElse","data":{}}`)))
	server.send(t, conn, EventTicketCreated, sampleTicket(42))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{42}, got)
}

func TestConnectIsIdempotent(t *testing.T) {
	server, srv := newWSServer(t)
	channel := NewChannel(testConfig(wsURL(srv)), zap.NewNop())
	defer channel.Close() //nolint:errcheck

	server.waitConn(t, 3*time.Second)
	channel.Connect()
	channel.Connect()

	// Give a duplicate loop time to dial if one existed.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, server.connCount())
}

func TestReconnectBacksOffAndKeepsHandlers(t *testing.T) {
	server, srv := newWSServer(t)
	channel := NewChannel(testConfig(wsURL(srv)), zap.NewNop())
	defer channel.Close() //nolint:errcheck

	var mu sync.Mutex
	var got []int
	channel.On(EventTicketCreated, func(ev Event) {
		mu.Lock()
		got = append(got, ev.Ticket.ID)
		mu.Unlock()
	})

	first := server.waitConn(t, 3*time.Second)

	// Sever the link and note when.
	require.NoError(t, first.Close())
	closedAt := time.Now()

	second := server.waitConn(t, 5*time.Second)
	reconnectGap := time.Since(closedAt)
	assert.GreaterOrEqual(t, reconnectGap, 900*time.Millisecond,
		"first retry must wait the base delay")

	mu.Lock()
	assert.Empty(t, got, "no events may fire while disconnected")
	mu.Unlock()

	// Previously registered handlers still fire on the new connection.
	server.send(t, second, EventTicketCreated, sampleTicket(7))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == 7
	}, 3*time.Second, 10*time.Millisecond)
}

func TestDecodeFrame(t *testing.T) {
	t.Run("valid assigned frame", func(t *testing.T) {
		raw := []byte(`{"event":"assignedTicket","data":{"id":3,"finished":false,"assignedTo":{"id":7,"fullName":"bob"}}}`)
		ev, err := decodeFrame(raw)
		require.NoError(t, err)
		assert.Equal(t, EventTicketAssigned, ev.Name)
		assert.Equal(t, 3, ev.Ticket.ID)
		require.NotNil(t, ev.Ticket.AssignedTo)
		assert.Equal(t, "bob", ev.Ticket.AssignedTo.FullName)
	})

	t.Run("unknown event name", func(t *testing.T) {
		_, err := decodeFrame([]byte(`{"event":"ticketDeleted","data":{"id":1}}`))
		assert.Error(t, err)
	})

	t.Run("missing ticket id", func(t *testing.T) {
		_, err := decodeFrame([]byte(`{"event":"ticketCreated","data":{}}`))
		assert.Error(t, err)
	})
}
