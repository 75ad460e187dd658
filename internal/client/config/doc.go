// Package config loads authctl settings.
//
// Sources, in increasing precedence:
//
//  1. Defaults (LoadDefaults).
//  2. A JSON file named by -c or -config.
//  3. Command-line flags -a (server URL), -i (online check interval, seconds)
//     and -t (request timeout, seconds).
//
// JSON durations accept either Go duration strings ("3s") or integer
// nanoseconds.
package config
