// Package cli is the dentalctl command tree. Each command opens one screen, loads it,
// renders it and exits; mutations run through the screen's form.
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/config"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/screen"
	"github.com/vcscsvcscs/dental-console/internal/security"
	"github.com/vcscsvcscs/dental-console/internal/service"
	"github.com/vcscsvcscs/dental-console/internal/session"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// ErrReported means the failure was already written to the output
var ErrReported = errors.New("error already reported")

// MsgNotSignedIn is shown when a screen is opened without a session
const MsgNotSignedIn = "You are not signed in. Run `dentalctl login` first."

// App is everything a command needs
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Sessions *session.Provider
	Client   *apiclient.Client
	Auth     *service.AuthService
	Deps     screen.Deps
	Out      io.Writer
	In       io.Reader
	// Color forces ANSI colors on or off; nil detects the terminal
	Color *bool
}

// NewApp wires storage, session, transport and services from the configuration
func NewApp(cfg *config.Config, logger *zap.Logger, out io.Writer, in io.Reader) (*App, error) {
	storage, err := session.NewFileStorage(cfg.Session.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	var sealer *security.TokenSealer
	if cfg.Session.EncryptionKey != "" {
		sealer, err = security.NewTokenSealer(cfg.Session.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create token sealer: %w", err)
		}
	}

	sessions := session.NewProvider(storage, sealer, logger)
	if err := sessions.Init(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	client, err := apiclient.NewClient(cfg.API.BaseURL, sessions, logger, apiclient.WithTimeout(cfg.API.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return newApp(cfg, logger, sessions, client, out, in), nil
}

func newApp(cfg *config.Config, logger *zap.Logger, sessions *session.Provider, client *apiclient.Client, out io.Writer, in io.Reader) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		Client:   client,
		Auth:     service.NewAuthService(client, sessions, logger),
		Deps: screen.Deps{
			Admin:         service.NewAdminService(client, logger),
			Doctor:        service.NewDoctorService(client, logger),
			Patient:       service.NewPatientService(client, logger),
			Notifications: service.NewNotificationService(client, logger),
			Audit:         audit.NewLogger(sessions, logger),
			Logger:        logger,
			Now:           time.Now,
			Location:      time.Local,
			TrackingLimit: cfg.API.TrackingLimit,
		},
		Out: out,
		In:  in,
	}
}

// Renderer draws in the stored theme
func (a *App) Renderer() *render.Renderer {
	color := render.ColorSupported(a.Out)
	if a.Color != nil {
		color = *a.Color
	}
	return render.New(a.Out, a.Sessions.Preferences().Theme, color)
}

// requireRole checks the session before any request is sent. A session for another
// role gets the same message the backend's 403 produces.
func (a *App) requireRole(role model.Role) (model.Session, error) {
	sess, err := a.Sessions.Require()
	if err != nil {
		fmt.Fprintln(a.Out, MsgNotSignedIn)
		return model.Session{}, ErrReported
	}
	if sess.Role != role {
		fmt.Fprintln(a.Out, apiclient.ForbiddenMessage)
		return model.Session{}, ErrReported
	}
	return sess, nil
}

// requireSession checks only that someone is signed in
func (a *App) requireSession() (model.Session, error) {
	sess, err := a.Sessions.Require()
	if err != nil {
		fmt.Fprintln(a.Out, MsgNotSignedIn)
		return model.Session{}, ErrReported
	}
	return sess, nil
}

// page writes a titled screen: its state line, then its tables once it has rows.
// A load error is reported after the header was written.
func page(r *render.Renderer, title string, h render.Header, empty string, loadErr error, tables ...render.Table) error {
	if err := r.Title(title); err != nil {
		return err
	}
	if err := r.Header(h, empty); err != nil {
		return err
	}
	if h.Phase == render.PhaseReady {
		for _, t := range tables {
			if err := r.Table(t); err != nil {
				return err
			}
		}
	}
	if loadErr != nil || h.Phase == render.PhaseError {
		return ErrReported
	}
	return nil
}
