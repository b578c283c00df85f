package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/dom/tablebook/internal/api"
	"github.com/dom/tablebook/internal/booking"
	"github.com/dom/tablebook/internal/config"
	"github.com/dom/tablebook/internal/domain"
	"github.com/dom/tablebook/internal/event"
	"github.com/dom/tablebook/internal/session"
)

// app holds the wired client stack shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    *session.Store
	client   *api.Client
	view     *consoleView
	workflow *booking.Workflow
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)

	logout := event.NewSignal()
	store := session.New(session.NewFileStorage(cfg.SessionFile), logout,
		session.WithLifetime(cfg.SessionLifetime),
		session.WithLogger(logger),
	)
	store.Restore()

	client := api.NewClient(cfg.BaseURL, store, logout,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)

	view := &consoleView{out: os.Stdout}
	workflow := booking.NewWorkflow(client, view, booking.WithLogger(logger))

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		client:   client,
		view:     view,
		workflow: workflow,
	}, nil
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04"}
	return zerolog.New(out).Level(parsed).With().Timestamp().Logger()
}

// requireUser gates the protected commands: when the session is
// anonymous (including after an expiry or a 401 collapse) the command
// refuses and points at login instead.
func (a *app) requireUser() (domain.User, error) {
	user, ok := a.store.User()
	if !ok {
		return domain.User{}, fmt.Errorf("%w: run 'tablebook login' first", domain.ErrNotAuthenticated)
	}
	return user, nil
}
