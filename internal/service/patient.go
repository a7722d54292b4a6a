package service

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// PatientService binds the /api/patient endpoints
type PatientService struct {
	api    API
	logger *zap.Logger
}

// NewPatientService creates a new PatientService
func NewPatientService(api API, logger *zap.Logger) *PatientService {
	return &PatientService{
		api:    api,
		logger: logger,
	}
}

// Dashboard loads upcoming visits, treatment cards and payments
func (s *PatientService) Dashboard(ctx context.Context) (model.PatientDashboard, error) {
	body, err := s.api.Get(ctx, PathPatientDashboard, nil)
	if err != nil {
		return model.PatientDashboard{}, fmt.Errorf("failed to load dashboard: %w", err)
	}

	r := gjson.ParseBytes(body)
	dash := model.PatientDashboard{
		UpcomingAppointments: []model.PatientAppointment{},
		TreatmentSummaries:   []model.TreatmentSummary{},
		Payments:             []model.Payment{},
	}
	for _, item := range r.Get("upcomingAppointments").Array() {
		dash.UpcomingAppointments = append(dash.UpcomingAppointments, mapPatientAppointment(item))
	}
	for _, item := range r.Get("treatmentSummaries").Array() {
		dash.TreatmentSummaries = append(dash.TreatmentSummaries, mapTreatmentSummary(item))
	}
	for _, item := range r.Get("payments").Array() {
		dash.Payments = append(dash.Payments, mapPayment(item))
	}
	return dash, nil
}

// Appointments lists the patient's visits
func (s *PatientService) Appointments(ctx context.Context) ([]model.PatientAppointment, error) {
	body, err := s.api.Get(ctx, PathPatientAppointments, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	return mapItems(body, mapPatientAppointment, "items"), nil
}

// Treatments lists the patient's treatment plans
func (s *PatientService) Treatments(ctx context.Context) ([]model.Treatment, error) {
	body, err := s.api.Get(ctx, PathPatientTreatments, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load treatments: %w", err)
	}
	return mapItems(body, mapTreatment, "items"), nil
}
