package screen

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

const (
	MsgLoadNotifications = "Failed to load notifications."
	MsgMarkRead          = "Could not mark notification as read."
	EmptyNotifications   = "No notifications."
	StatusRead           = "READ"
)

// Tab selects which notifications are listed
type Tab int

const (
	TabUnread Tab = iota
	TabAll
)

// ParseTab accepts "unread" or "all"
func ParseTab(raw string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unread":
		return TabUnread, nil
	case "all":
		return TabAll, nil
	}
	return TabUnread, fmt.Errorf("unknown tab %q", raw)
}

// Notifications is the inbox. Marking read updates the list before the request
// is sent and is not rolled back if the request fails.
type Notifications struct {
	deps   Deps
	logger *zap.Logger
	list   *resource.Resource[[]model.Notification]

	mu      sync.Mutex
	tab     Tab
	message string
}

// NewNotifications creates the inbox screen
func NewNotifications(d Deps) *Notifications {
	return &Notifications{
		deps:   d,
		logger: d.logger(),
		list:   resource.New("notifications", d.Notifications.List, d.logger()),
	}
}

// Load fetches the inbox
func (s *Notifications) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *Notifications) Close() {
	s.list.Close()
}

// SetTab switches between the unread and all tabs
func (s *Notifications) SetTab(t Tab) {
	s.mu.Lock()
	s.tab = t
	s.mu.Unlock()
}

// UnreadCount counts unread notifications
func (s *Notifications) UnreadCount() int {
	return listview.Count(s.list.Snapshot().Data, func(n model.Notification) bool {
		return status.NotificationUnread(n.Status)
	})
}

// Rows is the list for the selected tab
func (s *Notifications) Rows() []model.Notification {
	s.mu.Lock()
	tab := s.tab
	s.mu.Unlock()

	items := s.list.Snapshot().Data
	if tab == TabAll {
		return items
	}
	return listview.Filter(items, func(n model.Notification) bool { return status.NotificationUnread(n.Status) })
}

// Message is the last action error, or ""
func (s *Notifications) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Notifications) setMessage(m string) {
	s.mu.Lock()
	s.message = m
	s.mu.Unlock()
}

// MarkRead marks one notification read
func (s *Notifications) MarkRead(ctx context.Context, id int64) error {
	s.setMessage("")
	s.list.Update(func(items []model.Notification) []model.Notification {
		return listview.Replace(items,
			func(n model.Notification) bool { return n.ID == id },
			markRead)
	})

	err := s.deps.Notifications.MarkRead(ctx, id)
	s.deps.auditor().LogUpdate(audit.ResourceNotification, strconv.FormatInt(id, 10), audit.OutcomeOf(err, false),
		map[string]any{"status": StatusRead})
	if err != nil {
		s.logger.Warn("Failed to mark notification read", zap.Int64("notification_id", id), zap.Error(err))
		s.setMessage(apiclient.Describe(err, MsgMarkRead))
		return err
	}
	return nil
}

// MarkAllRead marks every notification read
func (s *Notifications) MarkAllRead(ctx context.Context) error {
	s.setMessage("")
	s.list.Update(func(items []model.Notification) []model.Notification {
		return listview.Replace(items, func(model.Notification) bool { return true }, markRead)
	})

	err := s.deps.Notifications.MarkAllRead(ctx)
	s.deps.auditor().LogUpdate(audit.ResourceNotification, "all", audit.OutcomeOf(err, false),
		map[string]any{"status": StatusRead})
	if err != nil {
		s.logger.Warn("Failed to mark all notifications read", zap.Error(err))
		s.setMessage(apiclient.Describe(err, MsgMarkRead))
		return err
	}
	return nil
}

func markRead(n model.Notification) model.Notification {
	n.Status = StatusRead
	return n
}

// Header is the state line
func (s *Notifications) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadNotifications)
}

// Table renders the selected tab
func (s *Notifications) Table() render.Table {
	t := render.Table{
		Title:   fmt.Sprintf("Notifications (%d unread)", s.UnreadCount()),
		Columns: []string{"ID", "When", "Title", "Message", "Status"},
		Empty:   EmptyNotifications,
	}
	loc := s.deps.location()
	for _, n := range s.Rows() {
		tone := status.ToneMuted
		if status.NotificationUnread(n.Status) {
			tone = status.ToneAccent
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(strconv.FormatInt(n.ID, 10)),
			render.Text(normalize.DisplayDateTime(n.CreatedAt, loc)),
			render.Text(orPlaceholder(n.Title)),
			render.Text(n.Message),
			render.Badge(orPlaceholder(n.Status), tone),
		})
	}
	return t
}
