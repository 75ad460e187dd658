// Package actorstub runs an in-memory database actor behind a WebSocket
// endpoint for tests. In table mode it stores rows per table and honours
// Retrieve/Insert/Update/Delete with Single and Or filters; in echo mode it
// answers every request with {"data":[<the request>]}.
package actorstub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/endpoint"
)

type Mode int

const (
	ModeTables Mode = iota
	ModeEcho
)

type failure struct {
	table  string
	action dbclient.Action
}

// Actor is safe for concurrent use by tests and connection handlers.
type Actor struct {
	mode   Mode
	secret []byte

	upgrader websocket.Upgrader

	mu          sync.Mutex
	tables      map[string][]map[string]any
	failures    map[failure]string
	omitID      bool
	silent      bool
	delay       time.Duration
	conns       map[*websocket.Conn]struct{}
	accepted    int
	tokens      []string
	requests    []dbclient.Request
	afterInsert func(table string)
}

// New returns an actor. If secret is non-empty, connections must carry a
// valid endpoint token.
func New(mode Mode, secret []byte) *Actor {
	return &Actor{
		mode:     mode,
		secret:   secret,
		tables:   make(map[string][]map[string]any),
		failures: make(map[failure]string),
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Start serves the actor on a test server and returns its ws:// base URL.
func (a *Actor) Start(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(a)
	t.Cleanup(func() {
		a.Kick()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (a *Actor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if len(a.secret) > 0 {
		if _, err := endpoint.ParseToken(token, a.secret); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	// Counted before the handshake completes so the dialer observes it.
	a.mu.Lock()
	a.accepted++
	a.tokens = append(a.tokens, token)
	a.mu.Unlock()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	a.mu.Lock()
	a.conns[conn] = struct{}{}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.conns, conn)
		a.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply, ok := a.handle(msg)
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			return
		}
	}
}

func (a *Actor) handle(msg []byte) ([]byte, bool) {
	a.mu.Lock()
	delay, silent, omit := a.delay, a.silent, a.omitID
	a.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	var req dbclient.Request
	if err := json.Unmarshal(msg, &req); err != nil {
		b, _ := dbclient.EncodeErrorReply("", "malformed request: "+err.Error())
		return b, true
	}

	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.mu.Unlock()

	if silent {
		return nil, false
	}

	id := req.ID
	if omit {
		id = ""
	}

	var (
		b   []byte
		err error
	)
	if a.mode == ModeEcho {
		b, err = dbclient.EncodeReply(id, []dbclient.Request{req})
	} else {
		b, err = a.apply(id, req)
	}
	if err != nil {
		b, _ = dbclient.EncodeErrorReply(id, err.Error())
	}
	return b, true
}

func (a *Actor) apply(id string, req dbclient.Request) ([]byte, error) {
	a.mu.Lock()
	if msg, ok := a.failures[failure{req.Table, req.Action}]; ok {
		a.mu.Unlock()
		return dbclient.EncodeErrorReply(id, msg)
	}

	var where *dbclient.WhereClause
	if req.Filters != nil {
		where = req.Filters.WhereClause
	}

	switch req.Action {
	case dbclient.ActionRetrieve:
		rows := make([]map[string]any, 0)
		for _, row := range a.tables[req.Table] {
			if matches(row, where) {
				rows = append(rows, copyRow(row))
			}
		}
		a.mu.Unlock()
		return dbclient.EncodeReply(id, rows)

	case dbclient.ActionInsert:
		a.tables[req.Table] = append(a.tables[req.Table], copyRow(req.Values))
		hook := a.afterInsert
		a.mu.Unlock()
		if hook != nil {
			hook(req.Table)
		}
		return dbclient.EncodeStatusReply(id, "success")

	case dbclient.ActionUpdate:
		for _, row := range a.tables[req.Table] {
			if matches(row, where) {
				for k, v := range req.Values {
					row[k] = v
				}
			}
		}
		a.mu.Unlock()
		return dbclient.EncodeStatusReply(id, "success")

	case dbclient.ActionDelete:
		kept := a.tables[req.Table][:0]
		for _, row := range a.tables[req.Table] {
			if !matches(row, where) {
				kept = append(kept, row)
			}
		}
		a.tables[req.Table] = kept
		a.mu.Unlock()
		return dbclient.EncodeStatusReply(id, "success")
	}

	a.mu.Unlock()
	return dbclient.EncodeErrorReply(id, "unsupported action "+string(req.Action))
}

func matches(row map[string]any, where *dbclient.WhereClause) bool {
	if where == nil {
		return true
	}
	if where.Single != nil {
		return matchAll(row, where.Single)
	}
	for _, alt := range where.Or {
		if matchAll(row, alt) {
			return true
		}
	}
	return false
}

func matchAll(row, fields map[string]any) bool {
	for k, v := range fields {
		if !reflect.DeepEqual(row[k], v) {
			return false
		}
	}
	return true
}

func copyRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Seed inserts a row directly.
func (a *Actor) Seed(table string, row map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tables[table] = append(a.tables[table], copyRow(row))
}

// Rows returns a copy of the rows stored in table.
func (a *Actor) Rows(table string) []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]map[string]any, 0, len(a.tables[table]))
	for _, row := range a.tables[table] {
		out = append(out, copyRow(row))
	}
	return out
}

// FailOn makes every (table, action) request answer with an error message.
func (a *Actor) FailOn(table string, action dbclient.Action, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[failure{table, action}] = message
}

// AfterInsert registers a hook run after each successful insert.
func (a *Actor) AfterInsert(fn func(table string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.afterInsert = fn
}

// OmitIDs makes replies carry no correlation id.
func (a *Actor) OmitIDs(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.omitID = v
}

// Silence makes the actor swallow requests without replying.
func (a *Actor) Silence(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.silent = v
}

// SetDelay delays every reply by d.
func (a *Actor) SetDelay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

// Kick drops every open connection from the server side.
func (a *Actor) Kick() {
	a.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(a.conns))
	for c := range a.conns {
		conns = append(conns, c)
	}
	a.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// Accepted returns how many connections were accepted so far.
func (a *Actor) Accepted() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accepted
}

// Tokens returns the endpoint tokens seen on accepted connections.
func (a *Actor) Tokens() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.tokens...)
}

// Requests returns the decoded requests received so far.
func (a *Actor) Requests() []dbclient.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]dbclient.Request(nil), a.requests...)
}

// Do serves req in process, without a network round trip. It lets the actor
// stand in for a connected client wherever a dbclient.Executor is expected.
func (a *Actor) Do(ctx context.Context, req dbclient.Request) ([]byte, error) {
	payload, err := dbclient.Encode(req)
	if err != nil {
		return nil, err
	}
	reply, ok := a.handle(payload)
	if !ok {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return reply, nil
}
