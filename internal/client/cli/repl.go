package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	SendVerifyEmail(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads one command per line and dispatches it to a. It returns on
// scanner EOF or on "exit"/"quit". Handler errors are already reported to
// the user by the handlers themselves.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, verify, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("authctl %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: verify, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "verify":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			_ = a.SendVerifyEmail(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
