package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the REPL on stdin until the user exits or ctx is cancelled.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to authctl (type 'help' for commands)")

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
