package screen

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

const (
	MsgLoadTracking    = "Unable to load case tracking data."
	MsgUpdateStage     = "Unable to update case stage."
	EmptyTrackedCases  = "No cases match the current filters."
	DefaultTrackingCap = 50
)

// Tracking is the case-tracking payload: summary header and case list
type Tracking = resource.Pair[model.CaseTrackingSummary, []model.TrackedCase]

// CaseTracking is the admin case-tracking board
type CaseTracking struct {
	deps   Deps
	logger *zap.Logger
	data   *resource.Resource[Tracking]

	mu       sync.Mutex
	stage    string
	highRisk bool
	query    string
	message  string
}

// NewCaseTracking creates the board; summary and list load together or not at all
func NewCaseTracking(d Deps) *CaseTracking {
	limit := d.TrackingLimit
	if limit <= 0 {
		limit = DefaultTrackingCap
	}
	s := &CaseTracking{
		deps:   d,
		logger: d.logger(),
		stage:  listview.AllFacet,
	}
	list := func(ctx context.Context) ([]model.TrackedCase, error) {
		return d.Admin.TrackingList(ctx, limit)
	}
	s.data = resource.New("case-tracking", resource.Join2(d.Admin.TrackingSummary, list), s.logger)
	return s
}

// Load fetches summary and list
func (s *CaseTracking) Load(ctx context.Context) error {
	_, err := s.data.Load(ctx)
	return loadError(err)
}

// Refresh re-fetches summary and list
func (s *CaseTracking) Refresh(ctx context.Context) error {
	_, err := s.data.Reload(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *CaseTracking) Close() {
	s.data.Close()
}

// Snapshot exposes the resource state
func (s *CaseTracking) Snapshot() resource.Snapshot[Tracking] {
	return s.data.Snapshot()
}

// SetStage filters by stage; "ALL" or "" clears the filter
func (s *CaseTracking) SetStage(raw string) error {
	selected := listview.AllFacet
	if raw != "" && raw != listview.AllFacet {
		stage, ok := status.ParseStage(raw)
		if !ok {
			return fmt.Errorf("unknown stage %q", raw)
		}
		selected = string(stage)
	}
	s.mu.Lock()
	s.stage = selected
	s.mu.Unlock()
	return nil
}

// SetHighRisk toggles the high-risk filter
func (s *CaseTracking) SetHighRisk(on bool) {
	s.mu.Lock()
	s.highRisk = on
	s.mu.Unlock()
}

// SetQuery sets the search text
func (s *CaseTracking) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Summary is the header as the backend reported it
func (s *CaseTracking) Summary() model.CaseTrackingSummary {
	return s.data.Snapshot().Data.First
}

// Cases returns the unfiltered list
func (s *CaseTracking) Cases() []model.TrackedCase {
	return s.data.Snapshot().Data.Second
}

// Rows applies the stage, high-risk and text filters
func (s *CaseTracking) Rows() []model.TrackedCase {
	s.mu.Lock()
	stage, highRisk, query := s.stage, s.highRisk, s.query
	s.mu.Unlock()

	var risk func(model.TrackedCase) bool
	if highRisk {
		risk = func(c model.TrackedCase) bool { return status.IsHighRisk(c.RiskScore) }
	}
	return listview.Search(s.Cases(), query, func(c model.TrackedCase) []string {
		return []string{c.CaseID, c.PatientName, c.DoctorName, c.Type}
	}, listview.Facet(stage, func(c model.TrackedCase) string { return string(c.Stage) }), risk)
}

// Header is the state line of the board
func (s *CaseTracking) Header() render.Header {
	return headerOf(s.data.Snapshot(), len(s.Rows()), MsgLoadTracking)
}

// Message is the last stage-update error, or ""
func (s *CaseTracking) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// UpdateStage moves a case and patches the row in place. The row takes the stage
// and timestamp the backend reports, falling back to the requested stage and the
// previous timestamp.
func (s *CaseTracking) UpdateStage(ctx context.Context, id int64, stage model.CaseStage) error {
	s.mu.Lock()
	s.message = ""
	s.mu.Unlock()

	upd, err := s.deps.Admin.UpdateCaseStage(ctx, id, stage)
	s.deps.auditor().LogUpdate(audit.ResourceCase, strconv.FormatInt(id, 10), audit.OutcomeOf(err, false),
		map[string]any{"stage": string(stage)})
	if err != nil {
		s.mu.Lock()
		s.message = apiclient.Describe(err, MsgUpdateStage)
		s.mu.Unlock()
		return err
	}

	s.data.Update(func(t Tracking) Tracking {
		t.Second = listview.Replace(t.Second,
			func(c model.TrackedCase) bool { return c.ID == id },
			func(c model.TrackedCase) model.TrackedCase {
				c.Stage = stage
				if upd.Stage != "" {
					c.Stage = status.NormalizeStage(string(upd.Stage))
				}
				if upd.LastUpdated != "" {
					c.LastUpdated = upd.LastUpdated
				}
				return c
			})
		return t
	})
	return nil
}

// SummaryFields renders the header cards
func (s *CaseTracking) SummaryFields() []render.Field {
	sum := s.Summary()
	fields := []render.Field{
		{Label: "Total cases", Value: render.Text(strconv.Itoa(sum.TotalCases))},
		{Label: "High risk", Value: render.Text(strconv.Itoa(sum.HighRiskCount))},
		{Label: "Needs follow-up", Value: render.Text(strconv.Itoa(sum.NeedsFollowUpCount))},
	}
	for _, stage := range model.AllStages {
		fields = append(fields, render.Field{
			Label: status.StageLabel(stage),
			Value: render.Badge(strconv.Itoa(sum.ByStage[stage]), status.StageTone(stage)),
		})
	}
	if sum.UpdatedAt != "" {
		fields = append(fields, render.Field{
			Label: "Updated",
			Value: render.Text(normalize.DisplayDateTime(sum.UpdatedAt, s.deps.location())),
		})
	}
	return fields
}

// Table renders the filtered list
func (s *CaseTracking) Table() render.Table {
	t := render.Table{
		Title:   "Tracked cases",
		Columns: []string{"#", "Case", "Patient", "Doctor", "Type", "Stage", "Priority", "Risk", "Next action", "Updated"},
		Empty:   EmptyTrackedCases,
	}
	loc := s.deps.location()
	for _, c := range s.Rows() {
		caseID := c.CaseID
		if c.Flagged {
			caseID += " !"
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(strconv.FormatInt(c.ID, 10)),
			render.Text(caseID),
			render.Text(c.PatientName),
			render.Text(c.DoctorName),
			render.Text(orPlaceholder(c.Type)),
			render.Badge(status.StageLabel(c.Stage), status.StageTone(c.Stage)),
			render.Badge(status.PriorityLabel(c.Priority), status.PriorityTone(c.Priority)),
			render.Badge(strconv.FormatFloat(c.RiskScore, 'f', 0, 64), status.RiskTone(c.RiskScore)),
			render.Text(orPlaceholder(c.NextAction)),
			render.Text(normalize.DisplayDate(c.LastUpdated, loc)),
		})
	}
	return t
}
