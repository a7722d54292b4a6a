package screen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

const (
	MsgLoadCases     = "Failed to load cases."
	MsgLoadPatients  = "Failed to load patients."
	MsgLoadDashboard = "Failed to load dashboard summary."
	MsgLoadRevenue   = "Failed to load revenue data."
	EmptyCases       = "No cases found."
	EmptyPatients    = "No patients found."
)

// CasePipeline is the admin case list with per-stage counts
type CasePipeline struct {
	deps  Deps
	list  *resource.Resource[[]model.CaseCard]
	stage string
	query string
}

// NewCasePipeline creates the case pipeline screen
func NewCasePipeline(d Deps) *CasePipeline {
	return &CasePipeline{
		deps:  d,
		list:  resource.New("cases", d.Admin.Cases, d.logger()),
		stage: listview.AllFacet,
	}
}

// Load fetches the cases
func (s *CasePipeline) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *CasePipeline) Close() {
	s.list.Close()
}

// SetQuery sets the search text
func (s *CasePipeline) SetQuery(q string) {
	s.query = q
}

// SetStage filters by stage; "ALL" or "" clears the filter
func (s *CasePipeline) SetStage(raw string) error {
	if raw == "" || raw == listview.AllFacet {
		s.stage = listview.AllFacet
		return nil
	}
	stage, ok := status.ParseStage(raw)
	if !ok {
		return fmt.Errorf("unknown stage %q", raw)
	}
	s.stage = string(stage)
	return nil
}

// Rows applies the stage filter and the search over id, patient, doctor and type
func (s *CasePipeline) Rows() []model.CaseCard {
	return listview.Search(s.list.Snapshot().Data, s.query, func(c model.CaseCard) []string {
		return []string{c.ID, c.Patient, c.Doctor, c.Type}
	}, listview.Facet(s.stage, func(c model.CaseCard) string { return string(c.Stage) }))
}

// Counts is the number of cases per stage over the unfiltered list; every stage is present
func (s *CasePipeline) Counts() map[model.CaseStage]int {
	counts := listview.CountBy(s.list.Snapshot().Data, func(c model.CaseCard) model.CaseStage { return c.Stage })
	for _, stage := range model.AllStages {
		counts[stage] += 0
	}
	return counts
}

// Header is the state line of the pipeline
func (s *CasePipeline) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadCases)
}

// CountFields renders the pipeline counts
func (s *CasePipeline) CountFields() []render.Field {
	counts := s.Counts()
	fields := make([]render.Field, 0, len(model.AllStages))
	for _, stage := range model.AllStages {
		fields = append(fields, render.Field{
			Label: status.StageLabel(stage),
			Value: render.Badge(strconv.Itoa(counts[stage]), status.StageTone(stage)),
		})
	}
	return fields
}

// Table renders the filtered cases
func (s *CasePipeline) Table() render.Table {
	t := render.Table{
		Title:   "Cases",
		Columns: []string{"ID", "Patient", "Doctor", "Type", "Stage"},
		Empty:   EmptyCases,
	}
	for _, c := range s.Rows() {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(c.ID),
			render.Text(orPlaceholder(c.Patient)),
			render.Text(orPlaceholder(c.Doctor)),
			render.Text(orPlaceholder(c.Type)),
			render.Badge(status.StageLabel(c.Stage), status.StageTone(c.Stage)),
		})
	}
	return t
}

// PatientDirectory is the admin patient list
type PatientDirectory struct {
	deps  Deps
	list  *resource.Resource[[]model.PatientRecord]
	query string
}

// NewPatientDirectory creates the patient directory screen
func NewPatientDirectory(d Deps) *PatientDirectory {
	return &PatientDirectory{
		deps: d,
		list: resource.New("patients", d.Admin.Patients, d.logger()),
	}
}

// Load fetches the directory
func (s *PatientDirectory) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *PatientDirectory) Close() {
	s.list.Close()
}

// SetQuery sets the search text
func (s *PatientDirectory) SetQuery(q string) {
	s.query = q
}

// Rows applies the search over id, name and phone
func (s *PatientDirectory) Rows() []model.PatientRecord {
	return listview.Search(s.list.Snapshot().Data, s.query, func(p model.PatientRecord) []string {
		return []string{p.ID, p.Name, p.Phone}
	})
}

// Header is the state line of the directory
func (s *PatientDirectory) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadPatients)
}

// Table renders the filtered directory
func (s *PatientDirectory) Table() render.Table {
	t := render.Table{
		Title:   "Patients",
		Columns: []string{"ID", "Name", "Phone", "Last visit", "Status"},
		Empty:   EmptyPatients,
	}
	loc := s.deps.location()
	for _, p := range s.Rows() {
		phone := p.Phone
		if phone == "" {
			phone = "No phone"
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(p.ID),
			render.Text(p.Name),
			render.Text(phone),
			render.Text(normalize.DisplayDate(p.LastVisit, loc)),
			render.Text(orPlaceholder(p.Status)),
		})
	}
	return t
}

// Dashboard is the admin home summary
type Dashboard struct {
	deps Deps
	res  *resource.Resource[model.DashboardSummary]
}

// NewDashboard creates the admin dashboard screen
func NewDashboard(d Deps) *Dashboard {
	return &Dashboard{
		deps: d,
		res:  resource.New("dashboard-summary", d.Admin.DashboardSummary, d.logger()),
	}
}

// Load fetches the summary
func (s *Dashboard) Load(ctx context.Context) error {
	_, err := s.res.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *Dashboard) Close() {
	s.res.Close()
}

// Summary is the loaded summary
func (s *Dashboard) Summary() model.DashboardSummary {
	return s.res.Snapshot().Data
}

// Header is the state line; a single-resource screen is never empty
func (s *Dashboard) Header() render.Header {
	return headerOf(s.res.Snapshot(), 1, MsgLoadDashboard)
}

// Fields renders the summary cards
func (s *Dashboard) Fields() []render.Field {
	sum := s.Summary()
	return []render.Field{
		{Label: "Today's appointments", Value: render.Text(fmt.Sprintf("%d (%+d)", sum.TodayAppointments, sum.TodayAppointmentsDelta))},
		{Label: "Today's revenue", Value: render.Text(formatMoney("₹", sum.TodaysRevenue) + formatDelta(sum.TodaysRevenueDeltaPercent))},
		{Label: "Low stock items", Value: lowStockCell(sum.LowStockItems)},
		{Label: "Active cases", Value: render.Text(strconv.Itoa(sum.ActiveCases))},
		{Label: "New cases", Value: render.Text(strconv.Itoa(sum.CasePipeline.New))},
		{Label: "In treatment", Value: render.Text(strconv.Itoa(sum.CasePipeline.InTreatment))},
		{Label: "Awaiting follow-up", Value: render.Text(strconv.Itoa(sum.CasePipeline.AwaitingFollowUp))},
		{Label: "New patients today", Value: render.Text(strconv.Itoa(sum.PatientSnapshot.NewPatientsToday))},
		{Label: "Returning patients today", Value: render.Text(strconv.Itoa(sum.PatientSnapshot.ReturningPatientsToday))},
		{Label: "Cancelled today", Value: render.Text(strconv.Itoa(sum.PatientSnapshot.CancelledAppointmentsToday))},
		{Label: "As of", Value: render.Text(normalize.DisplayDateTime(sum.AsOf, s.deps.location()))},
	}
}

func lowStockCell(n int) render.Cell {
	if n > 0 {
		return render.Badge(strconv.Itoa(n), status.ToneDanger)
	}
	return render.Badge(strconv.Itoa(n), status.ToneSuccess)
}

// Revenue is the admin revenue view
type Revenue struct {
	deps Deps
	res  *resource.Resource[model.RevenueDashboard]
}

// NewRevenue creates the revenue screen
func NewRevenue(d Deps) *Revenue {
	return &Revenue{
		deps: d,
		res:  resource.New("revenue-dashboard", d.Admin.RevenueDashboard, d.logger()),
	}
}

// Load fetches the revenue view
func (s *Revenue) Load(ctx context.Context) error {
	_, err := s.res.Load(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *Revenue) Close() {
	s.res.Close()
}

// Data is the loaded revenue view
func (s *Revenue) Data() model.RevenueDashboard {
	return s.res.Snapshot().Data
}

// Header is the state line
func (s *Revenue) Header() render.Header {
	return headerOf(s.res.Snapshot(), 1, MsgLoadRevenue)
}

// Fields renders the revenue cards
func (s *Revenue) Fields() []render.Field {
	rev := s.Data()
	return []render.Field{
		{Label: "This month", Value: render.Text(formatMoney("₹", rev.ThisMonthTotal) + formatDelta(rev.GrowthPercent))},
		{Label: "Pending / overdue", Value: render.Text(formatMoney("₹", rev.PendingOverdue))},
		{Label: "Average per day", Value: render.Text(formatMoney("₹", rev.AvgPerDay))},
	}
}

// Table renders the monthly bars
func (s *Revenue) Table() render.Table {
	t := render.Table{
		Title:   "Last 6 months",
		Columns: []string{"Month", "Revenue"},
		Empty:   "No revenue recorded.",
	}
	for _, m := range s.Data().Last6Months {
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(m.Label),
			render.Text(formatMoney("₹", m.Value)),
		})
	}
	return t
}

func formatMoney(symbol string, v float64) string {
	return symbol + strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDelta(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(" (%+.1f%%)", *p)
}
