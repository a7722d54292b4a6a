package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationLogin  OperationType = "LOGIN"
	OperationLogout OperationType = "LOGOUT"
)

// ResourceType represents the type of resource being changed
type ResourceType string

const (
	ResourceAppointment   ResourceType = "appointment"
	ResourceCase          ResourceType = "case"
	ResourceInventoryItem ResourceType = "inventory_item"
	ResourceNotification  ResourceType = "notification"
	ResourceSession       ResourceType = "session"
)

// Outcome is how the audited mutation ended
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeConflict Outcome = "conflict"
	OutcomeFailure  Outcome = "failure"
)

// Entry represents an audit log entry
type Entry struct {
	ID             string
	UserID         string
	Role           model.Role
	OperationType  OperationType
	ResourceType   ResourceType
	ResourceID     string
	Outcome        Outcome
	Timestamp      time.Time
	AdditionalData map[string]any
}

// Actor supplies the signed-in user for entries that do not name one
type Actor interface {
	Current() (model.Session, bool)
}

// Logger writes audit entries to the structured log
type Logger struct {
	actor  Actor
	logger *zap.Logger
	now    func() time.Time
}

// NewLogger creates a new audit logger. actor may be nil.
func NewLogger(actor Actor, logger *zap.Logger) *Logger {
	return &Logger{
		actor:  actor,
		logger: logger.Named("audit"),
		now:    time.Now,
	}
}

// Log records an entry, filling in id, timestamp and user when missing
func (l *Logger) Log(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	if entry.UserID == "" && l.actor != nil {
		if s, ok := l.actor.Current(); ok {
			entry.UserID = s.UserID
			entry.Role = s.Role
		}
	}
	if entry.UserID == "" {
		entry.UserID = "anonymous"
	}

	fields := []zap.Field{
		zap.String("audit_id", entry.ID),
		zap.String("user_id", entry.UserID),
		zap.String("role", string(entry.Role)),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.String("outcome", string(entry.Outcome)),
		zap.Time("timestamp", entry.Timestamp),
	}
	if len(entry.AdditionalData) > 0 {
		fields = append(fields, zap.Any("additional_data", entry.AdditionalData))
	}

	if entry.Outcome == OutcomeFailure {
		l.logger.Warn("Audit log entry", fields...)
	} else {
		l.logger.Info("Audit log entry", fields...)
	}
	return entry
}

// LogCreate logs a CREATE operation
func (l *Logger) LogCreate(resourceType ResourceType, resourceID string, outcome Outcome) Entry {
	return l.Log(Entry{
		OperationType: OperationCreate,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		Outcome:       outcome,
	})
}

// LogUpdate logs an UPDATE operation
func (l *Logger) LogUpdate(resourceType ResourceType, resourceID string, outcome Outcome, data map[string]any) Entry {
	return l.Log(Entry{
		OperationType:  OperationUpdate,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		Outcome:        outcome,
		AdditionalData: data,
	})
}

// OutcomeOf maps a mutation error onto an audit outcome
func OutcomeOf(err error, conflict bool) Outcome {
	switch {
	case conflict:
		return OutcomeConflict
	case err != nil:
		return OutcomeFailure
	}
	return OutcomeSuccess
}
