package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticActor struct {
	session model.Session
	ok      bool
}

func (a staticActor) Current() (model.Session, bool) {
	return a.session, a.ok
}

func TestLogger_FillsActorAndDefaults(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	actor := staticActor{session: model.Session{UserID: "AD-1", Role: model.RoleAdmin}, ok: true}
	l := NewLogger(actor, zap.New(core))
	fixed := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	entry := l.LogCreate(ResourceAppointment, "AP-1", OutcomeSuccess)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "AD-1", entry.UserID)
	assert.Equal(t, model.RoleAdmin, entry.Role)
	assert.Equal(t, fixed, entry.Timestamp)

	require.Equal(t, 1, logs.Len())
	logged := logs.All()[0]
	assert.Equal(t, "Audit log entry", logged.Message)
	fields := logged.ContextMap()
	assert.Equal(t, "CREATE", fields["operation"])
	assert.Equal(t, "appointment", fields["resource_type"])
	assert.Equal(t, "AP-1", fields["resource_id"])
	assert.Equal(t, "success", fields["outcome"])
}

func TestLogger_AnonymousAndFailureLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLogger(nil, zap.New(core))

	entry := l.LogUpdate(ResourceCase, "11", OutcomeFailure, map[string]any{"stage": "CLOSED"})
	assert.Equal(t, "anonymous", entry.UserID)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Contains(t, logs.All()[0].ContextMap(), "additional_data")
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeOf(nil, false))
	assert.Equal(t, OutcomeFailure, OutcomeOf(errors.New("boom"), false))
	assert.Equal(t, OutcomeConflict, OutcomeOf(errors.New("taken"), true))
}
