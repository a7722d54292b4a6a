package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// AdminService binds the /api/admin endpoints
type AdminService struct {
	api    API
	logger *zap.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(api API, logger *zap.Logger) *AdminService {
	return &AdminService{
		api:    api,
		logger: logger,
	}
}

// Appointments lists the schedule for one calendar date (YYYY-MM-DD)
func (s *AdminService) Appointments(ctx context.Context, date string) ([]model.AppointmentRow, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	body, err := s.api.Get(ctx, PathAdminAppointments, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	return mapItems(body, mapAppointmentRow, "items"), nil
}

// CreateAppointment books an appointment. A slot conflict comes back as
// *apiclient.ConflictError.
func (s *AdminService) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) error {
	s.logger.Info("creating appointment",
		zap.String("patient_uid", req.PatientUID),
		zap.String("doctor_uid", req.DoctorUID),
		zap.String("date", req.Date),
		zap.String("time", req.Time),
	)
	if _, err := s.api.Post(ctx, PathAdminAppointments, req); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// PatientOptions lists patients for the booking picker
func (s *AdminService) PatientOptions(ctx context.Context) ([]model.UserOption, error) {
	body, err := s.api.Get(ctx, PathAdminPatients, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}
	return mapItems(body, func(r gjson.Result) model.UserOption {
		return mapUserOption(r, "Unknown patient")
	}, "items"), nil
}

// DoctorOptions lists doctors for the booking picker
func (s *AdminService) DoctorOptions(ctx context.Context) ([]model.UserOption, error) {
	body, err := s.api.Get(ctx, PathAdminDoctors, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}
	return mapItems(body, func(r gjson.Result) model.UserOption {
		return mapUserOption(r, "Unknown doctor")
	}, "items"), nil
}

// Patients lists the patient directory
func (s *AdminService) Patients(ctx context.Context) ([]model.PatientRecord, error) {
	body, err := s.api.Get(ctx, PathAdminPatients, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}
	return mapItems(body, mapPatientRecord, "items"), nil
}

// TrackingSummary loads the header of the case-tracking board
func (s *AdminService) TrackingSummary(ctx context.Context) (model.CaseTrackingSummary, error) {
	body, err := s.api.Get(ctx, PathAdminTrackingSummary, nil)
	if err != nil {
		return model.CaseTrackingSummary{}, fmt.Errorf("failed to load case summary: %w", err)
	}
	return mapTrackingSummary(gjson.ParseBytes(body)), nil
}

// TrackingList loads up to limit tracked cases
func (s *AdminService) TrackingList(ctx context.Context, limit int) ([]model.TrackedCase, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := s.api.Get(ctx, PathAdminTrackingList, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load case list: %w", err)
	}
	return mapItems(body, mapTrackedCase, "cases", "items"), nil
}

// UpdateCaseStage moves a tracked case to another stage and returns what the
// backend reports back; missing fields stay empty.
func (s *AdminService) UpdateCaseStage(ctx context.Context, id int64, stage model.CaseStage) (model.CaseStageUpdate, error) {
	s.logger.Info("updating case stage",
		zap.Int64("case_id", id),
		zap.String("stage", string(stage)),
	)
	body, err := s.api.Patch(ctx, PathAdminCases+"/"+strconv.FormatInt(id, 10), map[string]model.CaseStage{"stage": stage})
	if err != nil {
		return model.CaseStageUpdate{}, fmt.Errorf("failed to update case stage: %w", err)
	}

	r := gjson.ParseBytes(body).Get("case")
	return model.CaseStageUpdate{
		Stage:       model.CaseStage(normalize.Coalesce(r, "", "stage")),
		LastUpdated: normalize.Coalesce(r, "", "lastUpdated"),
	}, nil
}

// Cases lists the case pipeline
func (s *AdminService) Cases(ctx context.Context) ([]model.CaseCard, error) {
	body, err := s.api.Get(ctx, PathAdminCases, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	return mapItems(body, mapCaseCard, "items"), nil
}

// Inventory lists stock lines with derived status
func (s *AdminService) Inventory(ctx context.Context) ([]model.InventoryItem, error) {
	body, err := s.api.Get(ctx, PathAdminInventory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return mapItems(body, mapInventoryItem, "items"), nil
}

// CreateInventoryItem adds a stock line
func (s *AdminService) CreateInventoryItem(ctx context.Context, payload model.CreateInventoryPayload) error {
	s.logger.Info("creating inventory item",
		zap.String("item_code", payload.ItemCode),
		zap.Int("stock", payload.Stock),
	)
	if _, err := s.api.Post(ctx, PathAdminInventory, payload); err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

// DashboardSummary loads the admin home summary
func (s *AdminService) DashboardSummary(ctx context.Context) (model.DashboardSummary, error) {
	body, err := s.api.Get(ctx, PathAdminDashboard, nil)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to load dashboard summary: %w", err)
	}
	return mapDashboardSummary(gjson.ParseBytes(body)), nil
}

// RevenueDashboard loads the revenue view
func (s *AdminService) RevenueDashboard(ctx context.Context) (model.RevenueDashboard, error) {
	body, err := s.api.Get(ctx, PathAdminRevenue, nil)
	if err != nil {
		return model.RevenueDashboard{}, fmt.Errorf("failed to load revenue dashboard: %w", err)
	}
	return mapRevenueDashboard(gjson.ParseBytes(body)), nil
}
