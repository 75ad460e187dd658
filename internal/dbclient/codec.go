package dbclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Action string

const (
	ActionRetrieve Action = "Retrieve"
	ActionInsert   Action = "Insert"
	ActionUpdate   Action = "Update"
	ActionDelete   Action = "Delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionRetrieve, ActionInsert, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Values maps field names to values for Insert and Update.
type Values map[string]any

// WhereClause selects rows either by one field→value map (all must match) or
// by a list of maps where any one matching is enough. Exactly one of Single
// and Or is set.
type WhereClause struct {
	Single map[string]any
	Or     []map[string]any
}

func Single(fields map[string]any) *WhereClause {
	return &WhereClause{Single: fields}
}

func Or(alternatives ...map[string]any) *WhereClause {
	return &WhereClause{Or: alternatives}
}

// Eq is shorthand for Single on one field.
func Eq(field string, value any) *WhereClause {
	return Single(map[string]any{field: value})
}

func (w WhereClause) MarshalJSON() ([]byte, error) {
	switch {
	case w.Single != nil && w.Or != nil:
		return nil, errors.New("where clause has both Single and Or")
	case w.Single != nil:
		return json.Marshal(map[string]any{"Single": w.Single})
	case w.Or != nil:
		return json.Marshal(map[string]any{"Or": w.Or})
	default:
		return nil, errors.New("where clause is empty")
	}
}

func (w *WhereClause) UnmarshalJSON(b []byte) error {
	var raw struct {
		Single map[string]any   `json:"Single"`
		Or     []map[string]any `json:"Or"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if (raw.Single == nil) == (raw.Or == nil) {
		return errors.New("where clause must be exactly one of Single or Or")
	}
	w.Single, w.Or = raw.Single, raw.Or
	return nil
}

type Filters struct {
	WhereClause *WhereClause `json:"where_clause,omitempty"`
}

// Request is one operation on one table. There is no batching and no
// transaction spanning several requests.
type Request struct {
	ID      string   `json:"id,omitempty"`
	Table   string   `json:"table"`
	Action  Action   `json:"action"`
	Values  Values   `json:"values,omitempty"`
	Filters *Filters `json:"filters,omitempty"`
}

// Where attaches a where clause to the request.
func (r Request) Where(w *WhereClause) Request {
	r.Filters = &Filters{WhereClause: w}
	return r
}

// Encode returns the wire form of req.
func Encode(req Request) ([]byte, error) {
	if strings.TrimSpace(req.Table) == "" {
		return nil, &EncodingError{Err: errors.New("table is required")}
	}
	if !req.Action.Valid() {
		return nil, &EncodingError{Err: fmt.Errorf("unknown action %q", req.Action)}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return b, nil
}

// Response is a decoded reply. Exactly one of Data/Status/Error is meaningful;
// IsError must be checked first.
type Response[T any] struct {
	ID     string
	Data   []T
	Status string
	err    *string
}

func (r *Response[T]) IsError() bool { return r.err != nil }

func (r *Response[T]) ErrorMessage() string {
	if r.err == nil {
		return ""
	}
	return *r.err
}

type envelope struct {
	ID     string          `json:"id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Status *string         `json:"status,omitempty"`
	Error  *string         `json:"error,omitempty"`
}

// Decode parses raw as a reply carrying records of type T.
func Decode[T any](raw []byte) (*Response[T], error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodingError{Err: err}
	}

	resp := &Response[T]{ID: env.ID}
	switch {
	case env.Error != nil:
		resp.err = env.Error
	case env.Data != nil:
		if err := json.Unmarshal(env.Data, &resp.Data); err != nil {
			return nil, &DecodingError{Err: err}
		}
	case env.Status != nil:
		resp.Status = *env.Status
	default:
		return nil, &DecodingError{Err: errors.New(`reply has none of "data", "status", "error"`)}
	}
	return resp, nil
}

// replyID extracts the correlation id of an inbound message; "" if absent or
// if the message is not JSON.
func replyID(raw []byte) string {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v.ID
}

// EncodeReply builds the wire form of a data reply. It is the actor side of
// the protocol and is used by stubs and tools.
func EncodeReply(id string, data any) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{ID: id, Data: b})
}

// EncodeErrorReply builds the wire form of an error reply.
func EncodeErrorReply(id, message string) ([]byte, error) {
	return json.Marshal(envelope{ID: id, Error: &message})
}

// EncodeStatusReply builds the wire form of a status reply.
func EncodeStatusReply(id, status string) ([]byte, error) {
	return json.Marshal(envelope{ID: id, Status: &status})
}
