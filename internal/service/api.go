package service

import (
	"context"
	"errors"
	"net/url"
)

// API is the authenticated transport the services call
type API interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
	Patch(ctx context.Context, path string, body any) ([]byte, error)
}

// PublicAPI is the unauthenticated transport used for login
type PublicAPI interface {
	PostPublic(ctx context.Context, path string, body any) ([]byte, error)
}

// ErrMissingRecordID is returned when a row has no usable database id for a mutation
var ErrMissingRecordID = errors.New("record has no usable database id")

// Backend routes
const (
	PathLogin = "/api/auth/login"

	PathAdminAppointments    = "/api/admin/appointments"
	PathAdminPatients        = "/api/admin/patients"
	PathAdminDoctors         = "/api/admin/doctors"
	PathAdminCases           = "/api/admin/cases"
	PathAdminTrackingSummary = "/api/admin/cases/tracking-summary"
	PathAdminTrackingList    = "/api/admin/cases/tracking-list"
	PathAdminInventory       = "/api/admin/inventory"
	PathAdminDashboard       = "/api/admin/dashboard-summary"
	PathAdminRevenue         = "/api/admin/revenue-dashboard"

	PathDoctorAppointments = "/api/doctor/appointments"
	PathDoctorCases        = "/api/doctor/cases"
	PathDoctorPatients     = "/api/doctor/patients"

	PathPatientDashboard    = "/api/patient/dashboard"
	PathPatientAppointments = "/api/patient/appointments"
	PathPatientTreatments   = "/api/patient/treatments"

	PathNotifications        = "/api/notifications"
	PathNotificationsReadAll = "/api/notifications/read-all"
)
