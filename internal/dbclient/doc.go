// Package dbclient talks to the remote database actor over one long-lived
// WebSocket connection.
//
// # Overview
//
//   - Codec: Request is encoded to a JSON text message; replies are decoded
//     with Decode[T] into a Response[T] that is either a list of records, a
//     bare status, or an error message. Check IsError before using Data.
//   - Gate: a FIFO lock that serialises writes, pings and reconnects on the
//     single connection.
//   - Client: owns the connection. Connect dials once at startup, Run keeps
//     two tasks alive until its context is cancelled: a fixed-interval
//     reconnect with a freshly minted endpoint and a heartbeat ping.
//
// # Correlation
//
// Every request carries an "id". A reader goroutine per connection matches
// replies to callers through a pending map, so the gate is held only for the
// send. Replies without an id go to the oldest waiting caller. Config.Serial
// keeps the gate for the whole round trip for actors that do not echo ids.
//
// # Failures
//
// A transport failure marks the connection Disconnected and it stays that way
// until the next scheduled reconnect. Callers get SendError or ErrNoReply and
// are expected to retry; delivery is at most once per connection.
package dbclient
