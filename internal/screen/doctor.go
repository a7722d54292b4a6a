package screen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/mutation"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/service"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

const (
	MsgLoadDoctorDashboard = "Failed to load doctor dashboard."
	MsgCompleteAppointment = "Could not complete appointment."
	MsgNotCompletable      = "This appointment cannot be marked completed."
	MsgCaseFieldsRequired  = "Patient name and diagnosis are required."
	MsgCreateCase          = "Could not create case."
	EmptyDoctorSchedule    = "No appointments scheduled for today."
	EmptyDoctorCases       = "No cases match your filters. Try adjusting the search or stage."
	EmptyDoctorPatients    = "No patients found for your recent appointments."
)

// ErrUnknownAppointment is returned when completing an id that is not on the schedule
var ErrUnknownAppointment = errors.New("appointment not found")

// DoctorSchedule is the doctor's visits for today with the complete action
type DoctorSchedule struct {
	deps  Deps
	list  *resource.Resource[[]model.DoctorAppointment]
	query string

	mu      sync.Mutex
	message string
}

// NewDoctorSchedule creates the doctor appointments screen
func NewDoctorSchedule(d Deps) *DoctorSchedule {
	return &DoctorSchedule{
		deps: d,
		list: resource.New("doctor-appointments", d.Doctor.Appointments, d.logger()),
	}
}

// Load fetches the schedule
func (s *DoctorSchedule) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *DoctorSchedule) Close() {
	s.list.Close()
}

// SetQuery sets the search text
func (s *DoctorSchedule) SetQuery(q string) {
	s.query = q
}

// Rows applies the search over id, patient and reason
func (s *DoctorSchedule) Rows() []model.DoctorAppointment {
	return listview.Search(s.list.Snapshot().Data, s.query, func(a model.DoctorAppointment) []string {
		return []string{a.ID, a.Patient, a.Reason}
	})
}

// Total counts every visit on the schedule
func (s *DoctorSchedule) Total() int {
	return len(s.list.Snapshot().Data)
}

// Actionable counts visits that can still be marked completed
func (s *DoctorSchedule) Actionable() int {
	return listview.Count(s.list.Snapshot().Data, func(a model.DoctorAppointment) bool {
		return status.AppointmentActionable(a.Status)
	})
}

// Completable reports whether the complete action is offered for a
func Completable(a model.DoctorAppointment) bool {
	return a.HasDBID && status.AppointmentActionable(a.Status)
}

// Message is the last action error, or ""
func (s *DoctorSchedule) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *DoctorSchedule) setMessage(m string) {
	s.mu.Lock()
	s.message = m
	s.mu.Unlock()
}

// Complete marks the visit with the given id completed and patches its row in place
func (s *DoctorSchedule) Complete(ctx context.Context, id string) error {
	s.setMessage("")

	var target *model.DoctorAppointment
	for _, a := range s.list.Snapshot().Data {
		if a.ID == id {
			target = &a
			break
		}
	}
	if target == nil {
		return fmt.Errorf("cannot complete %q: %w", id, ErrUnknownAppointment)
	}
	if !status.AppointmentActionable(target.Status) {
		s.setMessage(MsgNotCompletable)
		return fmt.Errorf("cannot complete %q: status is %s", id, target.Status)
	}

	err := s.deps.Doctor.CompleteAppointment(ctx, *target)
	s.deps.auditor().LogUpdate(audit.ResourceAppointment, id, audit.OutcomeOf(err, false),
		map[string]any{"status": status.LabelCompleted})
	if err != nil {
		if errors.Is(err, service.ErrMissingRecordID) {
			s.setMessage(MsgNotCompletable)
		} else {
			s.setMessage(apiclient.Describe(err, MsgCompleteAppointment))
		}
		return err
	}

	dbID := target.DBID
	s.list.Update(func(items []model.DoctorAppointment) []model.DoctorAppointment {
		return listview.Replace(items,
			func(a model.DoctorAppointment) bool { return a.HasDBID && a.DBID == dbID },
			func(a model.DoctorAppointment) model.DoctorAppointment {
				a.Status = status.LabelCompleted
				return a
			})
	})
	return nil
}

// Header is the state line of the schedule
func (s *DoctorSchedule) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadAppointments)
}

// Table renders the schedule; rows that cannot be completed say why
func (s *DoctorSchedule) Table() render.Table {
	t := render.Table{
		Title:   "Today's appointments",
		Columns: []string{"ID", "Time", "Patient", "Reason", "Room", "Status", "Action"},
		Empty:   EmptyDoctorSchedule,
	}
	for _, a := range s.Rows() {
		action := "complete"
		switch {
		case !status.AppointmentActionable(a.Status):
			action = normalize.Placeholder
		case !a.HasDBID:
			action = "unavailable (no record id)"
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(a.ID),
			render.Text(orPlaceholder(normalize.ClockHM(a.Time))),
			render.Text(a.Patient),
			render.Text(a.Reason),
			render.Text(a.Room),
			render.Badge(orPlaceholder(a.Status), status.AppointmentTone(a.Status)),
			render.Text(action),
		})
	}
	return t
}

// CaseForm is the new-case modal; Stage is a doctor-facing label
type CaseForm struct {
	PatientName string
	ToothRegion string
	Diagnosis   string
	Stage       string
}

// DoctorCases is the doctor's case list with the new-case modal
type DoctorCases struct {
	deps   Deps
	list   *resource.Resource[[]model.DoctorCase]
	create *mutation.Flow[CaseForm, model.DoctorCase]
	query  string
	stage  string
}

// NewDoctorCases creates the doctor cases screen
func NewDoctorCases(d Deps) *DoctorCases {
	s := &DoctorCases{
		deps:  d,
		list:  resource.New("doctor-cases", d.Doctor.Cases, d.logger()),
		stage: listview.AllFacet,
	}
	s.create = mutation.NewFlow(mutation.Config[CaseForm, model.DoctorCase]{
		Name:     "create-case",
		Policy:   mutation.PolicyReload,
		Fallback: MsgCreateCase,
		Validate: validateCase,
		Submit:   s.submit,
		Apply: func(ctx context.Context, _ model.DoctorCase, _ CaseForm) error {
			_, err := s.list.Reload(ctx)
			return loadError(err)
		},
	}, d.logger())
	return s
}

// Load fetches the cases
func (s *DoctorCases) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *DoctorCases) Close() {
	s.list.Close()
}

// Snapshot exposes the resource state
func (s *DoctorCases) Snapshot() resource.Snapshot[[]model.DoctorCase] {
	return s.list.Snapshot()
}

// SetQuery sets the search text
func (s *DoctorCases) SetQuery(q string) {
	s.query = q
}

// SetStage filters by doctor-facing stage label; "ALL" or "" clears the filter
func (s *DoctorCases) SetStage(label string) error {
	if label == "" || label == listview.AllFacet {
		s.stage = listview.AllFacet
		return nil
	}
	for _, l := range status.DoctorStageLabels() {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			s.stage = l
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", label)
}

// Rows applies the stage filter and the search over patient, id and diagnosis
func (s *DoctorCases) Rows() []model.DoctorCase {
	return listview.Search(s.list.Snapshot().Data, s.query, func(c model.DoctorCase) []string {
		return []string{c.PatientName, c.ID, c.Diagnosis}
	}, listview.Facet(s.stage, func(c model.DoctorCase) string { return c.Stage }))
}

// Header is the state line of the case list
func (s *DoctorCases) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadCases)
}

// Table renders the filtered cases
func (s *DoctorCases) Table() render.Table {
	t := render.Table{
		Title:   "My cases",
		Columns: []string{"ID", "Patient", "Tooth / region", "Diagnosis", "Stage", "Created", "Updated"},
		Empty:   EmptyDoctorCases,
	}
	for _, c := range s.Rows() {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(c.ID),
			render.Text(c.PatientName),
			render.Text(c.ToothRegion),
			render.Text(c.Diagnosis),
			render.Badge(c.Stage, status.DoctorStageTone(c.Stage)),
			render.Text(orPlaceholder(c.CreatedAt)),
			render.Text(orPlaceholder(c.UpdatedAt)),
		})
	}
	return t
}

// Form exposes the new-case modal
func (s *DoctorCases) Form() *mutation.Flow[CaseForm, model.DoctorCase] {
	return s.create
}

// OpenCreate opens the new-case modal at stage New
func (s *DoctorCases) OpenCreate() {
	s.create.Open(CaseForm{Stage: model.DoctorStageNew})
}

// Submit sends the new-case modal
func (s *DoctorCases) Submit(ctx context.Context) (mutation.Outcome, error) {
	return s.create.Submit(ctx)
}

func validateCase(f CaseForm) *mutation.FieldError {
	if strings.TrimSpace(f.PatientName) == "" || strings.TrimSpace(f.Diagnosis) == "" {
		return &mutation.FieldError{Field: "patientName", Message: MsgCaseFieldsRequired}
	}
	return nil
}

func (s *DoctorCases) submit(ctx context.Context, f CaseForm) (model.DoctorCase, error) {
	req := model.CreateDoctorCaseRequest{
		PatientName: strings.TrimSpace(f.PatientName),
		ToothRegion: strings.TrimSpace(f.ToothRegion),
		Diagnosis:   strings.TrimSpace(f.Diagnosis),
		Stage:       status.DoctorStageToDB(f.Stage),
	}
	created, err := s.deps.Doctor.CreateCase(ctx, req)
	s.deps.auditor().LogCreate(audit.ResourceCase, created.ID, audit.OutcomeOf(err, false))
	return created, err
}

// DoctorPatients is the doctor's patient panel
type DoctorPatients struct {
	deps  Deps
	list  *resource.Resource[[]model.DoctorPatient]
	query string
}

// NewDoctorPatients creates the doctor patients screen
func NewDoctorPatients(d Deps) *DoctorPatients {
	return &DoctorPatients{
		deps: d,
		list: resource.New("doctor-patients", d.Doctor.Patients, d.logger()),
	}
}

// Load fetches the panel
func (s *DoctorPatients) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *DoctorPatients) Close() {
	s.list.Close()
}

// SetQuery sets the search text
func (s *DoctorPatients) SetQuery(q string) {
	s.query = q
}

// Rows applies the search over name, id and phone
func (s *DoctorPatients) Rows() []model.DoctorPatient {
	return listview.Search(s.list.Snapshot().Data, s.query, func(p model.DoctorPatient) []string {
		return []string{p.Name, p.ID, p.Phone}
	})
}

// Header is the state line of the panel
func (s *DoctorPatients) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadPatients)
}

// Table renders the panel
func (s *DoctorPatients) Table() render.Table {
	t := render.Table{
		Title:   "My patients",
		Columns: []string{"ID", "Name", "Phone", "Last visit", "Active cases"},
		Empty:   EmptyDoctorPatients,
	}
	loc := s.deps.location()
	for _, p := range s.Rows() {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(p.ID),
			render.Text(p.Name),
			render.Text(orPlaceholder(p.Phone)),
			render.Text(normalize.DisplayDate(p.LastVisit, loc)),
			render.Text(strconv.Itoa(p.ActiveCases)),
		})
	}
	return t
}

// DoctorOverview is what the doctor dashboard loads, all or nothing
type DoctorOverview = resource.Triple[[]model.DoctorAppointment, []model.DoctorCase, []model.DoctorPatient]

// DoctorStats are the dashboard counters
type DoctorStats struct {
	// Appointments counts visits that are not cancelled
	Appointments   int
	Completed      int
	CompletionRate int
	OpenCases      int
	NewPatients    int
}

// ComputeDoctorStats derives the dashboard counters
func ComputeDoctorStats(o DoctorOverview) DoctorStats {
	var st DoctorStats
	for _, a := range o.First {
		label := status.AppointmentLabel(a.Status)
		if label == status.LabelCancelled {
			continue
		}
		st.Appointments++
		if label == status.LabelCompleted {
			st.Completed++
		}
	}
	if st.Appointments > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) / float64(st.Appointments) * 100))
	}
	st.OpenCases = listview.Count(o.Second, func(c model.DoctorCase) bool {
		return !status.CaseClosed(c.RawStage) && c.Stage != model.DoctorStageCompleted
	})
	st.NewPatients = len(o.Third)
	return st
}

// DoctorDashboard is the doctor's home screen
type DoctorDashboard struct {
	deps Deps
	res  *resource.Resource[DoctorOverview]
}

// NewDoctorDashboard creates the doctor dashboard
func NewDoctorDashboard(d Deps) *DoctorDashboard {
	return &DoctorDashboard{
		deps: d,
		res: resource.New("doctor-dashboard",
			resource.Join3(d.Doctor.Appointments, d.Doctor.Cases, d.Doctor.Patients), d.logger()),
	}
}

// Load fetches appointments, cases and patients together
func (s *DoctorDashboard) Load(ctx context.Context) error {
	_, err := s.res.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *DoctorDashboard) Close() {
	s.res.Close()
}

// Stats are the counters of the loaded overview
func (s *DoctorDashboard) Stats() DoctorStats {
	return ComputeDoctorStats(s.res.Snapshot().Data)
}

// Overview is the loaded data
func (s *DoctorDashboard) Overview() DoctorOverview {
	return s.res.Snapshot().Data
}

// Header is the state line; a 403 reads as a permission message
func (s *DoctorDashboard) Header() render.Header {
	return headerOf(s.res.Snapshot(), 1, MsgLoadDoctorDashboard)
}

// Fields renders the counters
func (s *DoctorDashboard) Fields() []render.Field {
	st := s.Stats()
	return []render.Field{
		{Label: "Appointments today", Value: render.Text(strconv.Itoa(st.Appointments))},
		{Label: "Completed", Value: render.Text(fmt.Sprintf("%d (%d%%)", st.Completed, st.CompletionRate))},
		{Label: "Open cases", Value: render.Text(strconv.Itoa(st.OpenCases))},
		{Label: "Patients", Value: render.Text(strconv.Itoa(st.NewPatients))},
	}
}
