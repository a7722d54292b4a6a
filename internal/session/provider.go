package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vcscsvcscs/dental-console/internal/security"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// Storage keys shared with the web console
const (
	KeyAuthToken   = "authToken"
	KeyLegacyToken = "token"
	KeyUserRole    = "userRole"
	KeyUserID      = "userId"
	KeyUserName    = "userName"
	KeyTheme       = "theme"
	KeySidebarOpen = "sidebarOpen"
)

// ErrNoSession is returned when an operation needs a signed-in user
var ErrNoSession = errors.New("no active session")

// Provider is the single owner of the persisted session and preferences. Components ask
// the provider instead of reading storage directly.
type Provider struct {
	storage Storage
	sealer  *security.TokenSealer
	logger  *zap.Logger

	mu      sync.RWMutex
	current *model.Session
}

// NewProvider creates a provider over storage. sealer may be nil, in which case the
// token is stored as given.
func NewProvider(storage Storage, sealer *security.TokenSealer, logger *zap.Logger) *Provider {
	return &Provider{
		storage: storage,
		sealer:  sealer,
		logger:  logger,
	}
}

// Init loads the persisted session at start-up. A missing session is not an error.
func (p *Provider) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = nil

	raw, ok := p.storage.Get(KeyAuthToken)
	if !ok || raw == "" {
		raw, ok = p.storage.Get(KeyLegacyToken)
	}
	if !ok || raw == "" {
		return nil
	}

	token := raw
	if p.sealer != nil {
		opened, err := p.sealer.Open(raw)
		if err != nil {
			p.logger.Warn("stored token could not be opened, discarding session", zap.Error(err))
			return p.clearLocked()
		}
		token = opened
	} else if security.IsSealed(raw) {
		p.logger.Warn("stored token is sealed but no storage key is configured")
		return nil
	}

	role, _ := p.storage.Get(KeyUserRole)
	userID, _ := p.storage.Get(KeyUserID)
	userName, _ := p.storage.Get(KeyUserName)

	normalized, ok := NormalizeRole(role)
	if !ok {
		p.logger.Warn("stored session has no valid role", zap.String("role", role))
	}

	p.current = &model.Session{
		Token:    token,
		Role:     normalized,
		UserID:   userID,
		UserName: userName,
	}

	p.logger.Debug("session loaded",
		zap.String("role", string(normalized)),
		zap.String("user_id", userID),
	)
	return nil
}

// Current returns the active session, if any
func (p *Provider) Current() (model.Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return model.Session{}, false
	}
	return *p.current, true
}

// Token returns the bearer token of the active session
func (p *Provider) Token() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil || p.current.Token == "" {
		return "", false
	}
	return p.current.Token, true
}

// Authenticated reports whether a session with a token and a known role exists
func (p *Provider) Authenticated() bool {
	s, ok := p.Current()
	return ok && s.Token != "" && s.Role != ""
}

// Require returns the active session or ErrNoSession
func (p *Provider) Require() (model.Session, error) {
	s, ok := p.Current()
	if !ok || s.Token == "" {
		return model.Session{}, ErrNoSession
	}
	return s, nil
}

// Begin persists a freshly authenticated session
func (p *Provider) Begin(s model.Session) error {
	if s.Token == "" {
		return fmt.Errorf("session token is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stored := s.Token
	if p.sealer != nil {
		sealed, err := p.sealer.Seal(s.Token)
		if err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
		stored = sealed
	}

	writes := []struct{ key, value string }{
		{KeyAuthToken, stored},
		{KeyUserRole, string(s.Role)},
		{KeyUserID, s.UserID},
		{KeyUserName, s.UserName},
	}
	for _, w := range writes {
		if err := p.storage.Set(w.key, w.value); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	if err := p.storage.Remove(KeyLegacyToken); err != nil {
		return fmt.Errorf("failed to remove legacy token: %w", err)
	}

	p.current = &s
	p.logger.Info("session started",
		zap.String("role", string(s.Role)),
		zap.String("user_id", s.UserID),
	)
	return nil
}

// End clears the session on explicit logout
func (p *Provider) End() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Info("session ended")
	return p.clearLocked()
}

// Expire clears the session after the backend rejected the token. The stored token is
// always removed so a stale session can never be re-displayed.
func (p *Provider) Expire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.logger.Warn("session expired",
			zap.String("role", string(p.current.Role)),
			zap.String("user_id", p.current.UserID),
		)
	}
	return p.clearLocked()
}

func (p *Provider) clearLocked() error {
	p.current = nil
	if err := p.storage.Remove(KeyAuthToken, KeyLegacyToken, KeyUserRole, KeyUserID, KeyUserName); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Preferences returns the persisted presentation settings
func (p *Provider) Preferences() model.Preferences {
	theme, _ := p.storage.Get(KeyTheme)
	prefs := model.Preferences{
		Theme:       ParseTheme(theme),
		SidebarOpen: true,
	}
	if v, ok := p.storage.Get(KeySidebarOpen); ok {
		prefs.SidebarOpen = v != "false"
	}
	return prefs
}

// SetTheme persists the theme mode
func (p *Provider) SetTheme(mode model.ThemeMode) error {
	if err := p.storage.Set(KeyTheme, string(ParseTheme(string(mode)))); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	return nil
}

// SetSidebarOpen persists the sidebar flag
func (p *Provider) SetSidebarOpen(open bool) error {
	v := "false"
	if open {
		v = "true"
	}
	if err := p.storage.Set(KeySidebarOpen, v); err != nil {
		return fmt.Errorf("failed to persist sidebar state: %w", err)
	}
	return nil
}

// NormalizeRole maps any casing of ADMIN, DOCTOR or PATIENT to a Role
func NormalizeRole(value string) (model.Role, bool) {
	switch model.Role(strings.ToUpper(strings.TrimSpace(value))) {
	case model.RoleAdmin:
		return model.RoleAdmin, true
	case model.RoleDoctor:
		return model.RoleDoctor, true
	case model.RolePatient:
		return model.RolePatient, true
	}
	return "", false
}

// ParseTheme maps a stored theme value to a mode; unknown values fall back to system
func ParseTheme(value string) model.ThemeMode {
	switch model.ThemeMode(value) {
	case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
		return model.ThemeMode(value)
	}
	return model.ThemeSystem
}

// NextTheme cycles light → dark → system → light
func NextTheme(mode model.ThemeMode) model.ThemeMode {
	switch mode {
	case model.ThemeLight:
		return model.ThemeDark
	case model.ThemeDark:
		return model.ThemeSystem
	}
	return model.ThemeLight
}
