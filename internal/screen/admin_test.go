package screen

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/dental-console/internal/mutation"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

const (
	getAppointments  = "GET /api/admin/appointments"
	postAppointments = "POST /api/admin/appointments"
)

func TestAdminAppointments_EmptyItemsIsEmptyState(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json(getAppointments, http.StatusOK, `{"items":[]}`)

	s := NewAdminAppointments(deps)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, render.PhaseEmpty, s.Header().Phase)
	assert.Empty(t, s.Rows())
	assert.Equal(t, EmptyAppointments, s.Table().Empty)
	assert.Equal(t, "2025-01-10", s.Date())
}

func TestAdminAppointments_LoadFailureShowsServerMessage(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json(getAppointments, http.StatusInternalServerError, `{"message":"database unavailable"}`)

	s := NewAdminAppointments(deps)
	require.Error(t, s.Load(context.Background()))

	h := s.Header()
	assert.Equal(t, render.PhaseError, h.Phase)
	assert.Equal(t, "database unavailable", h.Message)
}

func TestAdminAppointments_ConflictOffersSlots(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json(getAppointments, http.StatusOK, `{"items":[]}`)
	backend.json("GET /api/admin/patients", http.StatusOK, `{"items":[{"id":"PT-1","name":"Asha Rao"}]}`)
	backend.json("GET /api/admin/doctors", http.StatusOK, `{"items":[{"id":"DC-1","name":"Dr. Mehta"}]}`)
	backend.json(postAppointments, http.StatusConflict, `{
		"conflict": true,
		"message": "Slot taken",
		"suggestedSlots": [{"date":"2025-01-10","startTime":"09:00:00","endTime":"09:30:00","predictedDurationMin":30}]
	}`)

	s := NewAdminAppointments(deps)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.OpenCreate(context.Background()))

	form := s.Form().Form()
	assert.Equal(t, "PT-1", form.PatientUID)
	assert.Equal(t, "DC-1", form.DoctorUID)
	assert.Equal(t, DefaultAppointmentTime, form.Time)

	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mutation.OutcomeConflict, outcome)
	assert.True(t, s.Form().IsOpen())
	assert.Equal(t, "Slot taken", s.Form().Message())
	assert.Equal(t, []string{"09:00–09:30"}, s.Form().Suggestions().Labels())

	slot, err := s.PickSlot(0)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", slot.Date)

	form = s.Form().Form()
	assert.Equal(t, "2025-01-10", form.Date)
	assert.Equal(t, "09:00", form.Time)
	assert.Empty(t, s.Form().Message())
	assert.Equal(t, 1, backend.count(postAppointments))
}

func TestAdminAppointments_SuggestionsAreCapped(t *testing.T) {
	deps, backend := newTestDeps(t)
	var slots []string
	for i := 0; i < 20; i++ {
		slots = append(slots, fmt.Sprintf(`{"date":"2025-01-11","startTime":"%02d:00:00","endTime":"%02d:30:00"}`, 9+i%9, 9+i%9))
	}
	backend.json(postAppointments, http.StatusConflict,
		`{"conflict":true,"message":"Slot taken","suggestedSlots":[`+strings.Join(slots, ",")+`]}`)

	s := NewAdminAppointments(deps)
	s.Form().Open(AppointmentForm{PatientUID: "PT-1", DoctorUID: "DC-1", Date: "2025-01-10", Time: "09:00"})

	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mutation.OutcomeConflict, outcome)
	assert.Len(t, s.Form().Suggestions().Visible(), mutation.MaxSuggestions)
	assert.Equal(t, 20, s.Form().Suggestions().Total())

	_, err = s.PickSlot(mutation.MaxSuggestions)
	assert.ErrorIs(t, err, mutation.ErrNoSuggestion)
}

func TestAdminAppointments_SuccessReloadsOnce(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json(getAppointments, http.StatusOK, `{"items":[{"id":"AP-1","patient":"Asha Rao","doctor":"Dr. Mehta","status":"CONFIRMED"}]}`)
	backend.json(postAppointments, http.StatusCreated, `{"id":"AP-2"}`)

	s := NewAdminAppointments(deps)
	require.NoError(t, s.Load(context.Background()))
	before := backend.count(getAppointments)

	s.Form().Open(AppointmentForm{PatientUID: "PT-1", DoctorUID: "DC-1", Date: "2025-01-10", Time: "11:00", Type: "  "})
	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, mutation.OutcomeSuccess, outcome)
	assert.False(t, s.Form().IsOpen())
	assert.Equal(t, uint64(1), s.Snapshot().Refreshes)
	assert.Equal(t, before+1, backend.count(getAppointments))
	assert.Contains(t, string(backend.lastBody(postAppointments)), `"type":"General consultation"`)
}

func TestAdminAppointments_ValidationBlocksRequest(t *testing.T) {
	deps, backend := newTestDeps(t)

	s := NewAdminAppointments(deps)
	s.Form().Open(AppointmentForm{PatientUID: "PT-1", Date: "2025-01-10", Time: "09:00"})

	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mutation.OutcomeInvalid, outcome)
	assert.Equal(t, MsgSelectPatientDoctor, s.Form().Message())
	assert.Zero(t, backend.count(postAppointments))
}

func TestAdminAppointments_OpenCreateWithoutPeopleStillOpens(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/patients", http.StatusInternalServerError, `{}`)

	s := NewAdminAppointments(deps)
	err := s.OpenCreate(context.Background())

	require.Error(t, err)
	assert.True(t, s.Form().IsOpen())
	assert.Empty(t, s.Form().Form().PatientUID)
}

const trackingList = `{"cases":[
	{"id":7,"caseId":"C-7","patientName":"Asha Rao","doctorName":"Dr. Mehta","stage":"NEW","riskScore":82,"priority":"HIGH","lastUpdated":"2025-01-09T10:00:00Z"},
	{"id":8,"caseId":"C-8","patientName":"Ravi","doctorName":"Dr. Iyer","stage":"WAITING_ON_PATIENT","riskScore":20}
]}`

func newTracking(t *testing.T) (*CaseTracking, *fakeBackend) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/cases/tracking-summary", http.StatusOK,
		`{"totalCases":2,"highRiskCount":1,"byStage":{"NEW":1,"WAITING_ON_PATIENT":1}}`)
	backend.json("GET /api/admin/cases/tracking-list", http.StatusOK, trackingList)

	s := NewCaseTracking(deps)
	require.NoError(t, s.Load(context.Background()))
	return s, backend
}

func TestCaseTracking_StageUpdatePatchesInPlace(t *testing.T) {
	s, backend := newTracking(t)
	backend.json("PATCH /api/admin/cases/7", http.StatusOK, `{"case":{"stage":"IN_TREATMENT"}}`)

	listHits := backend.count("GET /api/admin/cases/tracking-list")
	before := s.Cases()[0]
	require.Equal(t, model.StageNew, before.Stage)

	require.NoError(t, s.UpdateStage(context.Background(), 7, model.StageInTreatment))

	after := s.Cases()[0]
	assert.Equal(t, model.StageInTreatment, after.Stage)
	assert.Equal(t, before.LastUpdated, after.LastUpdated)
	assert.NotEqual(t, status.StageTone(before.Stage), status.StageTone(after.Stage))
	assert.Equal(t, listHits, backend.count("GET /api/admin/cases/tracking-list"))
	assert.Equal(t, uint64(0), s.Snapshot().Refreshes)
	assert.JSONEq(t, `{"stage":"IN_TREATMENT"}`, string(backend.lastBody("PATCH /api/admin/cases/7")))
}

func TestCaseTracking_StageUpdateFailureKeepsRow(t *testing.T) {
	s, backend := newTracking(t)
	backend.json("PATCH /api/admin/cases/7", http.StatusBadRequest, `{"message":"Invalid stage transition"}`)

	require.Error(t, s.UpdateStage(context.Background(), 7, model.StageClosed))

	assert.Equal(t, model.StageNew, s.Cases()[0].Stage)
	assert.Equal(t, "Invalid stage transition", s.Message())
}

func TestCaseTracking_Filters(t *testing.T) {
	s, _ := newTracking(t)

	s.SetHighRisk(true)
	require.Len(t, s.Rows(), 1)
	assert.Equal(t, "C-7", s.Rows()[0].CaseID)

	s.SetHighRisk(false)
	require.NoError(t, s.SetStage("waiting on patient"))
	require.Len(t, s.Rows(), 1)
	assert.Equal(t, "C-8", s.Rows()[0].CaseID)

	require.NoError(t, s.SetStage("ALL"))
	s.SetQuery("iyer")
	assert.Len(t, s.Rows(), 1)

	assert.Error(t, s.SetStage("ARCHIVED"))

	s.SetQuery("nobody")
	assert.Equal(t, render.PhaseEmpty, s.Header().Phase)
}

func TestCaseTracking_SummaryFailsTogether(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/cases/tracking-summary", http.StatusInternalServerError, `{}`)
	backend.json("GET /api/admin/cases/tracking-list", http.StatusOK, trackingList)

	s := NewCaseTracking(deps)
	require.Error(t, s.Load(context.Background()))

	assert.Empty(t, s.Cases())
	assert.Equal(t, render.PhaseError, s.Header().Phase)
}

func TestCasePipeline_CountsEveryStage(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/cases", http.StatusOK, `{"items":[
		{"id":"C-1","stage":"NEW"},{"id":"C-2","stage":"new"},{"id":"C-3","stage":"bogus"},{"id":"C-4","stage":"CLOSED"}
	]}`)

	s := NewCasePipeline(deps)
	require.NoError(t, s.Load(context.Background()))

	counts := s.Counts()
	assert.Equal(t, 3, counts[model.StageNew])
	assert.Equal(t, 1, counts[model.StageClosed])
	assert.Len(t, counts, len(model.AllStages))

	require.NoError(t, s.SetStage("closed"))
	assert.Len(t, s.Rows(), 1)
	assert.Equal(t, 3, s.Counts()[model.StageNew])
}

func TestInventory_ValidationAndPayload(t *testing.T) {
	tests := []struct {
		name string
		form InventoryForm
		want string
	}{
		{"missing code", InventoryForm{Name: "Gauze"}, MsgItemCodeRequired},
		{"missing name", InventoryForm{ItemCode: "GAUZE-001"}, MsgNameRequired},
		{"negative stock", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", Stock: -1}, MsgStockNegative},
		{"negative threshold", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", ReorderThreshold: -0.5}, MsgThresholdNegative},
		{"infinite stock", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", Stock: math.Inf(1)}, MsgStockNegative},
		{"NaN stock", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", Stock: math.NaN()}, MsgStockNegative},
		{"stock beyond int range", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", Stock: 1e20}, MsgStockNegative},
		{"huge threshold", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", ReorderThreshold: 1e30}, MsgThresholdNegative},
		{"negative infinite threshold", InventoryForm{ItemCode: "GAUZE-001", Name: "Gauze", ReorderThreshold: math.Inf(-1)}, MsgThresholdNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := ValidateInventory(tt.form)
			require.NotNil(t, fe)
			assert.Equal(t, tt.want, fe.Message)
		})
	}

	assert.Nil(t, ValidateInventory(InventoryForm{ItemCode: "G", Name: "Gauze"}))
	assert.Nil(t, ValidateInventory(InventoryForm{ItemCode: "G", Name: "Gauze", Stock: math.MaxInt32, ReorderThreshold: math.MaxInt32}))

	p := InventoryPayload(InventoryForm{ItemCode: " GAUZE-001 ", Name: "Gauze", Stock: 12.9, ReorderThreshold: 4.2})
	assert.Equal(t, "GAUZE-001", p.ItemCode)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, 4, p.ReorderThreshold)
	assert.Equal(t, UncategorizedCategory, p.Category)
	assert.Nil(t, p.ExpiryDate)

	p = InventoryPayload(InventoryForm{ItemCode: "G", Name: "Gauze", ExpiryDate: "2026-03-01"})
	require.NotNil(t, p.ExpiryDate)
	assert.Equal(t, "2026-03-01", *p.ExpiryDate)
}

func TestInventory_CreateDuplicateShowsMessage(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/inventory", http.StatusOK, `{"items":[{"id":"GAUZE-001","name":"Gauze","stock":3,"reorderThreshold":10}]}`)
	backend.json("POST /api/admin/inventory", http.StatusConflict, `{"message":"Item code already exists"}`)

	s := NewInventory(deps)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, s.LowStockCount())

	s.OpenCreate()
	s.Form().Edit(func(f InventoryForm) InventoryForm {
		f.ItemCode = "GAUZE-001"
		f.Name = "Gauze"
		return f
	})
	outcome, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, mutation.OutcomeFailed, outcome)
	assert.Equal(t, "Item code already exists", s.Form().Message())
	assert.True(t, s.Form().Suggestions().Empty())
	assert.Equal(t, 1, backend.count("GET /api/admin/inventory"))
}

func TestInventory_CategoryFilter(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/inventory", http.StatusOK, `{"items":[
		{"id":"A","name":"Gauze","category":"Consumables","stock":50,"reorderThreshold":10},
		{"id":"B","name":"Mirror","category":"Instruments","stock":12,"reorderThreshold":10},
		{"id":"C","name":"Gloves","stock":0}
	]}`)

	s := NewInventory(deps)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"Consumables", "Instruments", "Uncategorized"}, s.Categories())
	s.SetCategory("Instruments")
	require.Len(t, s.Rows(), 1)
	assert.Equal(t, model.InventoryReorderSoon, s.Rows()[0].Status)

	s.SetCategory("")
	assert.Len(t, s.Rows(), 3)
}

func TestExportClinicReport(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/dashboard-summary", http.StatusOK, `{"todayAppointments":4,"todaysRevenue":1200}`)
	backend.json("GET /api/admin/revenue-dashboard", http.StatusOK, `{"thisMonthTotal":50000,"last6Months":[{"label":"Jan","value":50000}]}`)
	backend.json("GET /api/admin/inventory", http.StatusOK, `{"items":[{"id":"GAUZE-001","name":"Gauze","stock":2,"reorderThreshold":5}]}`)
	backend.json("GET /api/admin/cases", http.StatusOK, `{"items":[{"id":"C-1","stage":"NEW"}]}`)

	report, err := LoadClinicReport(context.Background(), deps, "Smile Dental", "Admin")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Summary.TodayAppointments)
	assert.Equal(t, model.InventoryLow, report.Inventory[0].Status)

	data, err := ExportClinicReport(context.Background(), deps, "Smile Dental", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportClinicReport_AllOrNothing(t *testing.T) {
	deps, backend := newTestDeps(t)
	backend.json("GET /api/admin/dashboard-summary", http.StatusOK, `{}`)
	backend.json("GET /api/admin/revenue-dashboard", http.StatusInternalServerError, `{"message":"ledger offline"}`)
	backend.json("GET /api/admin/inventory", http.StatusOK, `{"items":[]}`)
	backend.json("GET /api/admin/cases", http.StatusOK, `{"items":[]}`)

	_, err := ExportClinicReport(context.Background(), deps, "Smile Dental", "Admin")
	require.Error(t, err)
}
