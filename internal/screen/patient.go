package screen

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

const (
	MsgLoadPatientDashboard = "Failed to load dashboard."
	MsgLoadTreatments       = "Failed to load treatments."
	EmptyUpcoming           = "No upcoming appointments."
	EmptyPatientVisits      = "You have no appointments yet."
	EmptyTreatments         = "No treatment summaries available yet."
	EmptyPayments           = "No payments on record."
	DefaultLocation         = "Clinic"
	UnknownClock            = "--:--"
	RupeeSymbol             = "₹"
)

// PatientHome is the patient dashboard
type PatientHome struct {
	deps Deps
	res  *resource.Resource[model.PatientDashboard]
}

// NewPatientHome creates the patient dashboard
func NewPatientHome(d Deps) *PatientHome {
	return &PatientHome{
		deps: d,
		res:  resource.New("patient-dashboard", d.Patient.Dashboard, d.logger()),
	}
}

// Load fetches the dashboard
func (s *PatientHome) Load(ctx context.Context) error {
	_, err := s.res.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *PatientHome) Close() {
	s.res.Close()
}

// Data is the loaded dashboard
func (s *PatientHome) Data() model.PatientDashboard {
	return s.res.Snapshot().Data
}

// PendingPayments counts payments that are not PAID
func (s *PatientHome) PendingPayments() int {
	return listview.Count(s.Data().Payments, func(p model.Payment) bool { return !status.PaymentPaid(p.Status) })
}

// Header is the state line
func (s *PatientHome) Header() render.Header {
	return headerOf(s.res.Snapshot(), 1, MsgLoadPatientDashboard)
}

// Fields renders the dashboard counters
func (s *PatientHome) Fields() []render.Field {
	d := s.Data()
	return []render.Field{
		{Label: "Upcoming appointments", Value: render.Text(fmt.Sprint(len(d.UpcomingAppointments)))},
		{Label: "Active treatments", Value: render.Text(fmt.Sprint(len(d.TreatmentSummaries)))},
		{Label: "Pending payments", Value: render.Text(fmt.Sprint(s.PendingPayments()))},
	}
}

// Upcoming renders the next visits
func (s *PatientHome) Upcoming() render.Table {
	t := render.Table{
		Title:   "Upcoming appointments",
		Columns: []string{"Date", "Time", "Doctor", "Reason", "Status"},
		Empty:   EmptyUpcoming,
	}
	loc := s.deps.location()
	for _, a := range s.Data().UpcomingAppointments {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(normalize.DisplayDate(a.Date, loc)),
			render.Text(clockOrUnknown(a.Time)),
			render.Text(a.DoctorName),
			render.Text(orPlaceholder(a.Reason)),
			render.Badge(status.AppointmentLabel(a.Status), status.AppointmentTone(a.Status)),
		})
	}
	return t
}

// Treatments renders the treatment cards
func (s *PatientHome) Treatments() render.Table {
	t := render.Table{
		Title:   "Treatments",
		Columns: []string{"Title", "Stage", "Updated", "Summary"},
		Empty:   EmptyTreatments,
	}
	loc := s.deps.location()
	for _, tr := range s.Data().TreatmentSummaries {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(tr.Title),
			render.Text(orPlaceholder(tr.Stage)),
			render.Text(normalize.DisplayDate(tr.LastUpdated, loc)),
			render.Text(orPlaceholder(tr.Snippet)),
		})
	}
	return t
}

// Billing is the patient's payments, read from the dashboard payload
type Billing struct {
	deps Deps
	res  *resource.Resource[model.PatientDashboard]
}

// NewBilling creates the billing screen
func NewBilling(d Deps) *Billing {
	return &Billing{
		deps: d,
		res:  resource.New("billing", d.Patient.Dashboard, d.logger()),
	}
}

// Load fetches the payments
func (s *Billing) Load(ctx context.Context) error {
	_, err := s.res.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *Billing) Close() {
	s.res.Close()
}

// Payments is the loaded payment list
func (s *Billing) Payments() []model.Payment {
	return s.res.Snapshot().Data.Payments
}

// TotalDue sums payments with a status other than PAID. Payments with no status are not counted.
func (s *Billing) TotalDue() float64 {
	var total float64
	for _, p := range s.Payments() {
		if strings.TrimSpace(p.Status) != "" && !status.PaymentPaid(p.Status) {
			total += p.Amount
		}
	}
	return total
}

// CurrencyLabel is ₹ for INR or an unknown currency, otherwise the code followed by a space
func (s *Billing) CurrencyLabel() string {
	payments := s.Payments()
	if len(payments) == 0 {
		return RupeeSymbol
	}
	code := strings.ToUpper(strings.TrimSpace(payments[0].Currency))
	if code == "" || code == "INR" {
		return RupeeSymbol
	}
	return code + " "
}

// Header is the state line
func (s *Billing) Header() render.Header {
	return headerOf(s.res.Snapshot(), len(s.Payments()), MsgLoadPatientDashboard)
}

// Fields renders the amount due
func (s *Billing) Fields() []render.Field {
	return []render.Field{
		{Label: "Total due", Value: render.Text(formatMoney(s.CurrencyLabel(), s.TotalDue()))},
	}
}

// Table renders the payment list
func (s *Billing) Table() render.Table {
	t := render.Table{
		Title:   "Payments",
		Columns: []string{"ID", "Date", "Description", "Amount", "Status"},
		Empty:   EmptyPayments,
	}
	loc := s.deps.location()
	cur := s.CurrencyLabel()
	for _, p := range s.Payments() {
		label := strings.TrimSpace(p.Status)
		if label == "" {
			label = status.LabelPending
		}
		tone := status.ToneWarning
		if status.PaymentPaid(p.Status) {
			tone = status.ToneSuccess
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(p.ID),
			render.Text(normalize.DisplayDate(p.Date, loc)),
			render.Text(p.Description),
			render.Text(formatMoney(cur, p.Amount)),
			render.Badge(label, tone),
		})
	}
	return t
}

// PatientVisits is the patient's appointment list
type PatientVisits struct {
	deps Deps
	list *resource.Resource[[]model.PatientAppointment]
}

// NewPatientVisits creates the patient appointments screen
func NewPatientVisits(d Deps) *PatientVisits {
	return &PatientVisits{
		deps: d,
		list: resource.New("patient-appointments", d.Patient.Appointments, d.logger()),
	}
}

// Load fetches the visits
func (s *PatientVisits) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *PatientVisits) Close() {
	s.list.Close()
}

// Rows is the loaded list
func (s *PatientVisits) Rows() []model.PatientAppointment {
	return s.list.Snapshot().Data
}

// UpcomingCount counts visits not yet completed; a missing status counts as pending
func (s *PatientVisits) UpcomingCount() int {
	return listview.Count(s.Rows(), func(a model.PatientAppointment) bool {
		return status.AppointmentCodeOrPending(a.Status) != "COMPLETED"
	})
}

// Header is the state line
func (s *PatientVisits) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadAppointments)
}

// Table renders the visits
func (s *PatientVisits) Table() render.Table {
	t := render.Table{
		Title:   fmt.Sprintf("My appointments (%d upcoming)", s.UpcomingCount()),
		Columns: []string{"Date", "Time", "Doctor", "Reason", "Location", "Status", "Notes"},
		Empty:   EmptyPatientVisits,
	}
	loc := s.deps.location()
	for _, a := range s.Rows() {
		location := a.Location
		if strings.TrimSpace(location) == "" {
			location = DefaultLocation
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(normalize.DisplayDate(a.Date, loc)),
			render.Text(clockOrUnknown(a.Time)),
			render.Text(a.DoctorName),
			render.Text(orPlaceholder(a.Reason)),
			render.Text(location),
			render.Badge(status.AppointmentLabel(a.Status), status.AppointmentTone(a.Status)),
			render.Text(orPlaceholder(a.Notes)),
		})
	}
	return t
}

func clockOrUnknown(raw string) string {
	if hm := normalize.ClockHM(raw); hm != "" {
		return hm
	}
	return UnknownClock
}

// Treatments is the patient's treatment plan with expandable details
type Treatments struct {
	deps Deps
	list *resource.Resource[[]model.Treatment]

	mu       sync.Mutex
	expanded map[int]bool
}

// NewTreatments creates the treatments screen; the first entry starts expanded
func NewTreatments(d Deps) *Treatments {
	return &Treatments{
		deps:     d,
		list:     resource.New("treatments", d.Patient.Treatments, d.logger()),
		expanded: map[int]bool{0: true},
	}
}

// Load fetches the plan
func (s *Treatments) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *Treatments) Close() {
	s.list.Close()
}

// Rows is the loaded plan
func (s *Treatments) Rows() []model.Treatment {
	return s.list.Snapshot().Data
}

// Expanded reports whether entry i shows its details
func (s *Treatments) Expanded(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[i]
}

// Toggle flips entry i open or closed
func (s *Treatments) Toggle(i int) error {
	if i < 0 || i >= len(s.Rows()) {
		return fmt.Errorf("no treatment at position %d", i+1)
	}
	s.mu.Lock()
	s.expanded[i] = !s.expanded[i]
	s.mu.Unlock()
	return nil
}

// Header is the state line
func (s *Treatments) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadTreatments)
}

// Write renders every entry, with details for expanded ones
func (s *Treatments) Write(r *render.Renderer) error {
	loc := s.deps.location()
	for i, t := range s.Rows() {
		marker := "+"
		if s.Expanded(i) {
			marker = "-"
		}
		if err := r.Line("%s %d. %s  %s  %s", marker, i+1, t.Title,
			r.Badge(orPlaceholder(t.Stage), status.ToneInfo),
			normalize.DisplayDate(t.LastUpdated, loc)); err != nil {
			return err
		}
		if !s.Expanded(i) {
			continue
		}
		for _, text := range []string{t.Summary, t.Details} {
			if text == "" {
				continue
			}
			if err := r.Line("    %s", text); err != nil {
				return err
			}
		}
	}
	return nil
}
