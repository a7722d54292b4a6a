package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/mutation"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// Booking form defaults and messages
const (
	DefaultAppointmentTime   = "10:00"
	DefaultAppointmentType   = "General consultation"
	DefaultAppointmentStatus = status.LabelConfirmed

	MsgSelectPatientDoctor = "Please select both patient and doctor."
	MsgDateTimeRequired    = "Date and time are required."
	MsgCreateAppointment   = "Could not create appointment. Please check server logs."
	MsgLoadAppointments    = "Failed to load appointments."
	MsgLoadPeople          = "Failed to load patients and doctors."
	EmptyAppointments      = "No appointments found."
)

// AppointmentStatuses are the statuses a new booking may start in
var AppointmentStatuses = []string{
	status.LabelConfirmed,
	status.LabelCheckedIn,
	status.LabelCompleted,
	status.LabelCancelled,
	status.LabelRequested,
}

// AppointmentForm is the booking modal
type AppointmentForm struct {
	PatientUID string
	DoctorUID  string
	Date       string
	Time       string
	Type       string
	Status     string
}

// People are the picker options of the booking modal
type People = resource.Pair[[]model.UserOption, []model.UserOption]

// AdminAppointments is today's schedule with the booking modal
type AdminAppointments struct {
	deps   Deps
	logger *zap.Logger
	date   string
	query  string

	list   *resource.Resource[[]model.AppointmentRow]
	people *resource.Resource[People]
	create *mutation.Flow[AppointmentForm, struct{}]
}

// NewAdminAppointments creates the screen for the local calendar date
func NewAdminAppointments(d Deps) *AdminAppointments {
	s := &AdminAppointments{
		deps:   d,
		logger: d.logger(),
		date:   d.today(),
	}
	s.list = resource.New("appointments", func(ctx context.Context) ([]model.AppointmentRow, error) {
		return d.Admin.Appointments(ctx, s.date)
	}, s.logger)
	s.people = resource.New("people", resource.Join2(d.Admin.PatientOptions, d.Admin.DoctorOptions), s.logger)
	s.create = mutation.NewFlow(mutation.Config[AppointmentForm, struct{}]{
		Name:      "create-appointment",
		Policy:    mutation.PolicyReload,
		Fallback:  MsgCreateAppointment,
		Validate:  validateAppointment,
		Submit:    s.submit,
		Apply:     s.reload,
		ApplySlot: applySlot,
	}, s.logger)
	return s
}

// Date is the schedule date (YYYY-MM-DD)
func (s *AdminAppointments) Date() string {
	return s.date
}

// Load fetches the schedule
func (s *AdminAppointments) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Refresh re-fetches the schedule
func (s *AdminAppointments) Refresh(ctx context.Context) error {
	_, err := s.list.Reload(ctx)
	return loadError(err)
}

func (s *AdminAppointments) reload(ctx context.Context, _ struct{}, _ AppointmentForm) error {
	return s.Refresh(ctx)
}

// Close discards anything still in flight
func (s *AdminAppointments) Close() {
	s.list.Close()
	s.people.Close()
}

// Snapshot exposes the schedule resource state
func (s *AdminAppointments) Snapshot() resource.Snapshot[[]model.AppointmentRow] {
	return s.list.Snapshot()
}

// SetQuery sets the search text
func (s *AdminAppointments) SetQuery(q string) {
	s.query = q
}

// Rows returns the appointments matching the search over id, patient and doctor
func (s *AdminAppointments) Rows() []model.AppointmentRow {
	return listview.Search(s.list.Snapshot().Data, s.query, func(a model.AppointmentRow) []string {
		return []string{a.ID, a.Patient, a.Doctor}
	})
}

// Header is the state line of the schedule
func (s *AdminAppointments) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadAppointments)
}

// Table renders the schedule
func (s *AdminAppointments) Table() render.Table {
	t := render.Table{
		Title:   "Appointments for " + s.date,
		Columns: []string{"ID", "Date", "Time", "Patient", "Doctor", "Type", "Status"},
		Empty:   EmptyAppointments,
	}
	loc := s.deps.location()
	for _, a := range s.Rows() {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(a.ID),
			render.Text(normalize.DisplayDate(a.Date, loc)),
			render.Text(orPlaceholder(normalize.ClockHM(a.Time))),
			render.Text(a.Patient),
			render.Text(a.Doctor),
			render.Text(orPlaceholder(a.Type)),
			render.Badge(a.Status, status.AppointmentTone(a.Status)),
		})
	}
	return t
}

// Form exposes the booking modal
func (s *AdminAppointments) Form() *mutation.Flow[AppointmentForm, struct{}] {
	return s.create
}

// OpenCreate opens the booking modal. Patients and doctors are fetched on the first
// open only. If they cannot be loaded the modal still opens, without defaults.
func (s *AdminAppointments) OpenCreate(ctx context.Context) error {
	var loadErr error
	if !s.people.Snapshot().HasData {
		if _, err := s.people.Load(ctx); err != nil && !resource.Discarded(err) {
			loadErr = err
		}
	}

	people := s.people.Snapshot().Data
	form := AppointmentForm{
		Date:   s.deps.today(),
		Time:   DefaultAppointmentTime,
		Type:   DefaultAppointmentType,
		Status: DefaultAppointmentStatus,
	}
	if len(people.First) > 0 {
		form.PatientUID = people.First[0].ID
	}
	if len(people.Second) > 0 {
		form.DoctorUID = people.Second[0].ID
	}
	s.create.Open(form)

	if loadErr != nil {
		return fmt.Errorf("%s: %w", apiclient.Describe(loadErr, MsgLoadPeople), loadErr)
	}
	return nil
}

// Patients returns the patient options matching q by name, id or phone
func (s *AdminAppointments) Patients(q string) []model.UserOption {
	return searchOptions(s.people.Snapshot().Data.First, q)
}

// Doctors returns the doctor options matching q by name, id or phone
func (s *AdminAppointments) Doctors(q string) []model.UserOption {
	return searchOptions(s.people.Snapshot().Data.Second, q)
}

func searchOptions(options []model.UserOption, q string) []model.UserOption {
	return listview.Search(options, q, func(o model.UserOption) []string {
		return []string{o.Name, o.ID, o.Phone}
	})
}

// Submit sends the booking modal
func (s *AdminAppointments) Submit(ctx context.Context) (mutation.Outcome, error) {
	return s.create.Submit(ctx)
}

// PickSlot copies the i-th suggested slot into the form
func (s *AdminAppointments) PickSlot(i int) (model.SuggestedSlot, error) {
	return s.create.Pick(i)
}

func validateAppointment(f AppointmentForm) *mutation.FieldError {
	if strings.TrimSpace(f.PatientUID) == "" || strings.TrimSpace(f.DoctorUID) == "" {
		return &mutation.FieldError{Field: "patient", Message: MsgSelectPatientDoctor}
	}
	if strings.TrimSpace(f.Date) == "" || strings.TrimSpace(f.Time) == "" {
		return &mutation.FieldError{Field: "date", Message: MsgDateTimeRequired}
	}
	return nil
}

func applySlot(f AppointmentForm, date, clock string) AppointmentForm {
	f.Date = date
	f.Time = clock
	return f
}

func (s *AdminAppointments) submit(ctx context.Context, f AppointmentForm) (struct{}, error) {
	req := model.CreateAppointmentRequest{
		PatientUID: f.PatientUID,
		DoctorUID:  f.DoctorUID,
		Date:       f.Date,
		Time:       f.Time,
		Type:       strings.TrimSpace(f.Type),
		Status:     f.Status,
	}
	if req.Type == "" {
		req.Type = DefaultAppointmentType
	}

	err := s.deps.Admin.CreateAppointment(ctx, req)

	var conflict *apiclient.ConflictError
	s.deps.auditor().Log(audit.Entry{
		OperationType: audit.OperationCreate,
		ResourceType:  audit.ResourceAppointment,
		ResourceID:    req.PatientUID + "@" + req.Date + "T" + req.Time,
		Outcome:       audit.OutcomeOf(err, errors.As(err, &conflict)),
		AdditionalData: map[string]any{
			"doctor_uid": req.DoctorUID,
		},
	})
	return struct{}{}, err
}
