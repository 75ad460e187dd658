// Package client talks to the auth HTTP API.
//
// # Overview
//
// Client is the contract the CLI depends on; HTTPClient implements it over
// net/http. After a successful Login the bearer token is kept in memory and
// attached to SendVerifyEmail. Revoke invalidates it on the server and
// Logout forgets it locally.
//
// # Error Handling
//
// Transport failures and 503 answers map to ErrUnavailable, 401 to
// ErrUnauthorized. Any other non-2xx answer is returned as *APIError carrying
// the status and the error code from the response body.
package client
