package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// DoctorService binds the /api/doctor endpoints
type DoctorService struct {
	api    API
	logger *zap.Logger
}

// NewDoctorService creates a new DoctorService
func NewDoctorService(api API, logger *zap.Logger) *DoctorService {
	return &DoctorService{
		api:    api,
		logger: logger,
	}
}

// Appointments lists today's visits for the signed-in doctor
func (s *DoctorService) Appointments(ctx context.Context) ([]model.DoctorAppointment, error) {
	body, err := s.api.Get(ctx, PathDoctorAppointments, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	items := mapItems(body, mapDoctorAppointment, "items")
	for _, a := range items {
		if !a.HasDBID {
			s.logger.Warn("appointment has no usable database id",
				zap.String("appointment_id", a.ID),
			)
		}
	}
	return items, nil
}

// CompleteAppointment marks a visit completed. Rows without a usable database id fail
// with ErrMissingRecordID before any request is sent.
func (s *DoctorService) CompleteAppointment(ctx context.Context, appt model.DoctorAppointment) error {
	if !appt.HasDBID {
		return fmt.Errorf("cannot complete appointment %q: %w", appt.ID, ErrMissingRecordID)
	}

	s.logger.Info("completing appointment",
		zap.Int64("db_id", appt.DBID),
		zap.String("appointment_id", appt.ID),
	)
	path := PathDoctorAppointments + "/" + strconv.FormatInt(appt.DBID, 10) + "/complete"
	if _, err := s.api.Patch(ctx, path, nil); err != nil {
		return fmt.Errorf("failed to complete appointment: %w", err)
	}
	return nil
}

// Cases lists the doctor's cases with doctor-facing stage labels
func (s *DoctorService) Cases(ctx context.Context) ([]model.DoctorCase, error) {
	body, err := s.api.Get(ctx, PathDoctorCases, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	return mapItems(body, mapDoctorCase, "cases", "items"), nil
}

// CreateCase opens a case and returns it as the backend stored it
func (s *DoctorService) CreateCase(ctx context.Context, req model.CreateDoctorCaseRequest) (model.DoctorCase, error) {
	s.logger.Info("creating case",
		zap.String("patient_name", req.PatientName),
		zap.String("stage", string(req.Stage)),
	)
	body, err := s.api.Post(ctx, PathDoctorCases, req)
	if err != nil {
		return model.DoctorCase{}, fmt.Errorf("failed to create case: %w", err)
	}

	created := mapDoctorCase(gjson.ParseBytes(body).Get("case"))
	if created.PatientName == "Unknown patient" {
		created.PatientName = req.PatientName
	}
	if created.Diagnosis == "General case" && req.Diagnosis != "" {
		created.Diagnosis = req.Diagnosis
	}
	return created, nil
}

// Patients lists the doctor's patient panel
func (s *DoctorService) Patients(ctx context.Context) ([]model.DoctorPatient, error) {
	body, err := s.api.Get(ctx, PathDoctorPatients, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}
	return mapItems(body, mapDoctorPatient, "items"), nil
}
