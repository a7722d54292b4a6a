package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// NotificationService binds the /api/notifications endpoints shared by every role
type NotificationService struct {
	api    API
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(api API, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		api:    api,
		logger: logger,
	}
}

// List loads notifications including the read ones
func (s *NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	body, err := s.api.Get(ctx, PathNotifications, url.Values{"includeRead": {"1"}})
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return mapItems(body, mapNotification, "items"), nil
}

// MarkRead marks one notification read
func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	path := PathNotifications + "/" + strconv.FormatInt(id, 10) + "/read"
	if _, err := s.api.Post(ctx, path, nil); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification read
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	if _, err := s.api.Post(ctx, PathNotificationsReadAll, nil); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
