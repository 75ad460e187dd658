package dbclient

import (
	"context"
	"encoding/json"
)

// Executor performs one request/reply exchange. *Client implements it;
// repositories depend on this interface so tests can substitute it.
type Executor interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Query runs req and returns the rows of the reply decoded as T. An error
// reply from the actor is returned as *ActorError.
func Query[T any](ctx context.Context, ex Executor, req Request) ([]T, error) {
	raw, err := ex.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := Decode[T](raw)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &ActorError{Table: req.Table, Action: req.Action, Message: resp.ErrorMessage()}
	}
	return resp.Data, nil
}

// Exec runs req for its side effect only.
func Exec(ctx context.Context, ex Executor, req Request) error {
	_, err := Query[json.RawMessage](ctx, ex, req)
	return err
}

// ToValues converts a record with json tags into Values.
func ToValues(record any) (Values, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	var v Values
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, &EncodingError{Err: err}
	}
	return v, nil
}
