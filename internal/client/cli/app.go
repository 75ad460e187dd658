package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/wsauth/internal/client/client"
	"github.com/dmitrijs2005/wsauth/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	api      client.Client
	userName string
	reader   *bufio.Reader
	out      io.Writer

	modeMu sync.Mutex
	Mode   Mode
}

func NewApp(c *config.Config) (*App, error) {
	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (app *App) setMode(mode Mode) {
	app.modeMu.Lock()
	defer app.modeMu.Unlock()
	if app.Mode != mode {
		app.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (app *App) mode() Mode {
	app.modeMu.Lock()
	defer app.modeMu.Unlock()
	return app.Mode
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Logout()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.api != nil && a.api.LoggedIn()
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
