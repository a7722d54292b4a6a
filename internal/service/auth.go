package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/session"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// Login messages
const (
	MsgMissingCredentials = "Please enter both email and password."
	MsgLoginFailed        = "Login failed. Please check your credentials."
	MsgServerUnreachable  = "Cannot reach server. Make sure the backend is running."
	MsgInvalidRole        = "Please choose Admin, Doctor or Patient."
)

// LoginError carries the message shown on the login form
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// SessionStore persists the session after a successful login
type SessionStore interface {
	Begin(s model.Session) error
	End() error
}

// AuthService signs users in and out
type AuthService struct {
	api      PublicAPI
	sessions SessionStore
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(api PublicAPI, sessions SessionStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// UserType is the capitalized role name the login endpoint also expects
func UserType(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return "Admin"
	case model.RoleDoctor:
		return "Doctor"
	}
	return "Patient"
}

// Login authenticates against the backend and starts a session. The session role is
// the role the server reports, falling back to the requested one.
func (s *AuthService) Login(ctx context.Context, email, password string, role model.Role) (model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.Session{}, &LoginError{Message: MsgMissingCredentials}
	}
	requested, ok := session.NormalizeRole(string(role))
	if !ok {
		return model.Session{}, &LoginError{Message: MsgInvalidRole}
	}

	req := model.LoginRequest{
		Email:    email,
		Password: password,
		Role:     requested,
		UserType: UserType(requested),
	}

	body, err := s.api.PostPublic(ctx, PathLogin, req)
	if err != nil {
		s.logger.Warn("login failed",
			zap.String("role", string(requested)),
			zap.Error(err),
		)
		return model.Session{}, loginError(err)
	}

	r := gjson.ParseBytes(body)
	resp := model.LoginResponse{
		Token: r.Get("token").String(),
		Role:  r.Get("role").String(),
		UID:   r.Get("uid").String(),
		Name:  r.Get("name").String(),
	}
	if resp.Token == "" {
		return model.Session{}, &LoginError{Message: MsgLoginFailed}
	}

	sessionRole, ok := session.NormalizeRole(resp.Role)
	if !ok {
		sessionRole = requested
	}

	sess := model.Session{
		Token:    resp.Token,
		Role:     sessionRole,
		UserID:   resp.UID,
		UserName: resp.Name,
	}
	if err := s.sessions.Begin(sess); err != nil {
		return model.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("logged in",
		zap.String("role", string(sessionRole)),
		zap.String("user_id", resp.UID),
	)
	return sess, nil
}

// Logout ends the stored session
func (s *AuthService) Logout() error {
	return s.sessions.End()
}

func loginError(err error) *LoginError {
	var transport *apiclient.TransportError
	if errors.As(err, &transport) {
		return &LoginError{Message: MsgServerUnreachable, Err: err}
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.JSON {
		if msg := strings.TrimSpace(gjson.GetBytes(apiErr.Body, "message").String()); msg != "" {
			return &LoginError{Message: msg, Err: err}
		}
	}
	return &LoginError{Message: MsgLoginFailed, Err: err}
}
