// Package cli provides authctl, the interactive client of the auth API.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// A background watcher probes /health and switches the prompt between online
// and offline mode.
//
// Commands:
//   - register: create an account (email, username, password)
//   - login: sign in by email or username and keep the token in memory
//   - verify: ask the server to send the email verification code
//   - logout: revoke the token on the server and forget it
//   - exit | quit
package cli
