package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPatientService_Dashboard(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathPatientDashboard, url.Values(nil)).
		Return([]byte(`{
			"upcomingAppointments":[{"id":"AP-1","date":"2025-01-10","time":"09:00","doctorName":"Dr. Mehta","reason":"Cleaning","status":"CONFIRMED"}],
			"treatmentSummaries":[{"id":"TR-1","title":"Root canal","stage":"In progress","snippet":"Second sitting"}],
			"payments":[{"id":1,"amount":"1500","currency":"INR","status":"PENDING"},{"id":2,"amount":500,"status":"PAID"}]
		}`), nil)

	dash, err := NewPatientService(api, zap.NewNop()).Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, dash.UpcomingAppointments, 1)
	assert.Equal(t, "Dr. Mehta", dash.UpcomingAppointments[0].DoctorName)
	assert.Equal(t, "Confirmed", dash.UpcomingAppointments[0].Status)

	require.Len(t, dash.TreatmentSummaries, 1)
	assert.Equal(t, "Second sitting", dash.TreatmentSummaries[0].Snippet)

	require.Len(t, dash.Payments, 2)
	assert.InDelta(t, 1500, dash.Payments[0].Amount, 0.001)
	assert.Equal(t, "Dental treatment invoice", dash.Payments[0].Description)
	assert.Equal(t, "1", dash.Payments[0].ID)
}

func TestPatientService_DashboardMissingSections(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathPatientDashboard, url.Values(nil)).Return([]byte(`{}`), nil)

	dash, err := NewPatientService(api, zap.NewNop()).Dashboard(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, dash.UpcomingAppointments)
	assert.Empty(t, dash.Payments)
}

func TestPatientService_AppointmentsAndTreatments(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathPatientAppointments, url.Values(nil)).
		Return([]byte(`{"items":[{"id":3,"doctor":"Dr. Rao","status":"","location":"Clinic 2"}]}`), nil)
	api.On("Get", mock.Anything, PathPatientTreatments, url.Values(nil)).
		Return([]byte(`{"items":[{"id":"TR-1","title":"Braces","stage":"Active","summary":"Monthly tightening","details":null}]}`), nil)

	svc := NewPatientService(api, zap.NewNop())

	appts, err := svc.Appointments(context.Background())
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "Dr. Rao", appts[0].DoctorName)
	assert.Equal(t, "Pending", appts[0].Status)
	assert.Equal(t, "Clinic 2", appts[0].Location)

	treatments, err := svc.Treatments(context.Background())
	require.NoError(t, err)
	require.Len(t, treatments, 1)
	assert.Equal(t, "Monthly tightening", treatments[0].Summary)
	assert.Empty(t, treatments[0].Details)
}
