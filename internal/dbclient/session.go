package dbclient

import (
	"sync"
)

// session is one connection epoch: the Conn plus the callers waiting for a
// reply on it. Closing a session fails every pending caller with ErrNoReply.
//
// order holds ids in send order, including abandoned ones. An abandoned id
// keeps its slot until its reply arrives, so a reply without an id is never
// handed to a caller it was not meant for.
type session struct {
	conn  Conn
	epoch uint64

	mu        sync.Mutex
	pending   map[string]chan []byte
	abandoned map[string]struct{}
	order     []string
	closed    bool
	done      chan struct{}
}

// delivery is the outcome of routing one inbound reply.
type delivery int

const (
	delivered delivery = iota
	// discarded replies belonged to a caller that gave up after sending.
	discarded
	unmatched
)

func newSession(conn Conn, epoch uint64) *session {
	return &session{
		conn:      conn,
		epoch:     epoch,
		pending:   make(map[string]chan []byte),
		abandoned: make(map[string]struct{}),
		done:      make(chan struct{}),
	}
}

// expect registers id and returns the channel its reply will arrive on.
func (s *session) expect(id string) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrNotConnected
	}
	ch := make(chan []byte, 1)
	s.pending[id] = ch
	s.order = append(s.order, id)
	return ch, nil
}

// forget drops id before anything was sent for it.
func (s *session) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// abandon gives up on id after its request went out. The slot stays in order
// until the matching reply is consumed.
func (s *session) abandon(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return
	}
	delete(s.pending, id)
	s.abandoned[id] = struct{}{}
}

func (s *session) removeLocked(id string) {
	delete(s.pending, id)
	delete(s.abandoned, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// deliver routes msg to the caller waiting on id, or to the oldest slot if
// id is empty.
func (s *session) deliver(id string, msg []byte) delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		if len(s.order) == 0 {
			return unmatched
		}
		id = s.order[0]
	}
	if _, ok := s.abandoned[id]; ok {
		s.removeLocked(id)
		return discarded
	}
	ch, ok := s.pending[id]
	if !ok {
		return unmatched
	}
	s.removeLocked(id)
	ch <- msg
	return delivered
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// close shuts the connection and fails all pending callers. Safe to call twice.
func (s *session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
	clear(s.abandoned)
	s.order = nil
	close(s.done)
	s.mu.Unlock()

	_ = s.conn.Close()
}

// readLoop dispatches inbound messages until the connection fails, then
// closes the session and calls onExit with the read error.
func (s *session) readLoop(onMessage func(id string, d delivery), onExit func(error)) {
	for {
		msg, err := s.conn.ReadMessage()
		if err != nil {
			s.close()
			onExit(err)
			return
		}
		id := replyID(msg)
		onMessage(id, s.deliver(id, msg))
	}
}
