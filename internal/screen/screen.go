// Package screen holds the console's view-models. Each screen owns its resources,
// filters and forms, and turns them into render tables; nothing is shared between
// screens, so opening a screen always fetches fresh data.
package screen

import (
	"time"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/service"
	"go.uber.org/zap"
)

// Deps is what screens are built from
type Deps struct {
	Admin         *service.AdminService
	Doctor        *service.DoctorService
	Patient       *service.PatientService
	Notifications *service.NotificationService
	Audit         *audit.Logger
	Logger        *zap.Logger
	// Now is the clock used for "today"; time.Now when nil
	Now func() time.Time
	// Location is the zone dates are displayed in; time.Local when nil
	Location      *time.Location
	TrackingLimit int
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

func (d Deps) auditor() *audit.Logger {
	if d.Audit != nil {
		return d.Audit
	}
	return audit.NewLogger(nil, d.logger())
}

func (d Deps) today() string {
	return normalize.LocalDate(d.now().In(d.location()))
}

func (d Deps) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

// headerOf derives the state line from a snapshot and the number of visible rows.
// Stale rows stay visible during a reload; an error keeps previous rows as well.
func headerOf[T any](snap resource.Snapshot[T], rows int, fallback string) render.Header {
	switch {
	case snap.State == resource.StateError:
		return render.Header{Phase: render.PhaseError, Message: apiclient.Describe(snap.Err, fallback)}
	case !snap.HasData:
		return render.Header{Phase: render.PhaseLoading}
	case rows == 0:
		return render.Header{Phase: render.PhaseEmpty}
	}
	return render.Header{Phase: render.PhaseReady}
}

// loadError is the error a screen reports from Load: discarded results are not failures
func loadError(err error) error {
	if resource.Discarded(err) {
		return nil
	}
	return err
}

func orPlaceholder(s string) string {
	if s == "" {
		return normalize.Placeholder
	}
	return s
}
