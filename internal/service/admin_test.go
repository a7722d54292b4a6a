package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

func TestAdminService_Appointments(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminAppointments, url.Values{"date": {"2025-01-10"}}).
		Return([]byte(`{"items":[
			{"id":"AP-1","date":"2025-01-10","time":"09:00","patient":"Asha Rao","doctor":"Dr. Mehta","type":"Cleaning","status":"CONFIRMED"},
			{"appointment_uid":"AP-2","patientName":"Ravi","status":""}
		]}`), nil)

	svc := NewAdminService(api, zap.NewNop())
	rows, err := svc.Appointments(context.Background(), "2025-01-10")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "AP-1", rows[0].ID)
	assert.Equal(t, "Confirmed", rows[0].Status)
	assert.Equal(t, "AP-2", rows[1].ID)
	assert.Equal(t, "Ravi", rows[1].Patient)
	assert.Equal(t, "—", rows[1].Doctor)
	assert.Equal(t, "Pending", rows[1].Status)
	api.AssertExpectations(t)
}

func TestAdminService_EmptyItems(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminAppointments, mock.Anything).Return([]byte(`{}`), nil)

	rows, err := NewAdminService(api, zap.NewNop()).Appointments(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAdminService_CreateAppointmentConflictIsPreserved(t *testing.T) {
	api := new(MockAPI)
	conflict := &apiclient.ConflictError{Message: "Slot taken"}
	req := model.CreateAppointmentRequest{PatientUID: "PT-1", DoctorUID: "DC-1", Date: "2025-01-10", Time: "09:00"}
	api.On("Post", mock.Anything, PathAdminAppointments, req).Return(nil, conflict)

	err := NewAdminService(api, zap.NewNop()).CreateAppointment(context.Background(), req)
	var got *apiclient.ConflictError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "Slot taken", got.Message)
}

func TestAdminService_PickerOptions(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminPatients, url.Values(nil)).
		Return([]byte(`{"items":[{"id":"PT-1","full_name":"Asha Rao","phone":"98100"},{"id":"PT-2","name":""}]}`), nil)
	api.On("Get", mock.Anything, PathAdminDoctors, url.Values(nil)).
		Return([]byte(`{"items":[{"id":"DC-1"}]}`), nil)

	svc := NewAdminService(api, zap.NewNop())
	patients, err := svc.PatientOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.UserOption{
		{ID: "PT-1", Name: "Asha Rao", Phone: "98100"},
		{ID: "PT-2", Name: "Unknown patient"},
	}, patients)

	doctors, err := svc.DoctorOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Unknown doctor", doctors[0].Name)
}

func TestAdminService_Tracking(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminTrackingSummary, url.Values(nil)).
		Return([]byte(`{"totalCases":3,"highRiskCount":1,"byStage":{"NEW":2,"IN_TREATMENT":1,"bogus":9},"updatedAt":null}`), nil)
	api.On("Get", mock.Anything, PathAdminTrackingList, url.Values{"limit": {"50"}}).
		Return([]byte(`{"cases":[{"id":11,"caseId":"CS-11","patientName":"Asha","doctorName":"Dr. Mehta","type":"RCT","stage":"in_treatment","priority":"high","riskScore":82.5,"flagged":true}]}`), nil)

	svc := NewAdminService(api, zap.NewNop())

	summary, err := svc.TrackingSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCases)
	assert.Equal(t, 0, summary.NeedsFollowUpCount)
	assert.Equal(t, map[model.CaseStage]int{model.StageNew: 2, model.StageInTreatment: 1}, summary.ByStage)
	assert.Empty(t, summary.UpdatedAt)

	cases, err := svc.TrackingList(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, int64(11), cases[0].ID)
	assert.Equal(t, model.StageInTreatment, cases[0].Stage)
	assert.Equal(t, model.PriorityHigh, cases[0].Priority)
	assert.InDelta(t, 82.5, cases[0].RiskScore, 0.001)
	assert.True(t, cases[0].Flagged)
}

func TestAdminService_UpdateCaseStage(t *testing.T) {
	api := new(MockAPI)
	api.On("Patch", mock.Anything, "/api/admin/cases/11", map[string]model.CaseStage{"stage": model.StageClosed}).
		Return([]byte(`{"case":{"stage":"CLOSED","lastUpdated":"2025-01-10T10:00:00Z"}}`), nil)
	api.On("Patch", mock.Anything, "/api/admin/cases/12", mock.Anything).
		Return([]byte(`{}`), nil)

	svc := NewAdminService(api, zap.NewNop())
	upd, err := svc.UpdateCaseStage(context.Background(), 11, model.StageClosed)
	require.NoError(t, err)
	assert.Equal(t, model.StageClosed, upd.Stage)
	assert.Equal(t, "2025-01-10T10:00:00Z", upd.LastUpdated)

	upd, err = svc.UpdateCaseStage(context.Background(), 12, model.StageBlocked)
	require.NoError(t, err)
	assert.Empty(t, upd.Stage)
	assert.Empty(t, upd.LastUpdated)
}

func TestAdminService_Inventory(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminInventory, url.Values(nil)).
		Return([]byte(`{"items":[
			{"id":1,"name":"Gauze","category":"Consumables","stock":5,"reorderThreshold":10},
			{"id":"GLOVE-1","name":"","category":"","stock":"14","reorderThreshold":"10"},
			{"id":3,"name":"Bur","stock":100,"status":"Discontinued"},
			{"id":4,"name":"Mirror"}
		]}`), nil)

	items, err := NewAdminService(api, zap.NewNop()).Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, model.InventoryLow, items[0].Status)

	assert.Equal(t, "—", items[1].Name)
	assert.Equal(t, "Uncategorized", items[1].Category)
	assert.Equal(t, 14, items[1].Stock)
	assert.Equal(t, model.InventoryReorderSoon, items[1].Status)

	assert.Equal(t, "Discontinued", items[2].Status)

	assert.Equal(t, 0, items[3].Stock)
	assert.Nil(t, items[3].ReorderThreshold)
	assert.Equal(t, model.InventoryHealthy, items[3].Status)
}

func TestAdminService_Dashboards(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminDashboard, url.Values(nil)).
		Return([]byte(`{"todayAppointments":12,"lowStockItems":2,"todaysRevenue":4500.5,"todaysRevenueDeltaPercent":null,
			"casePipeline":{"new":3,"inTreatment":4,"awaitingFollowUp":1},"patientSnapshot":{"newPatientsToday":2},"asOf":"2025-01-10"}`), nil)
	api.On("Get", mock.Anything, PathAdminRevenue, url.Values(nil)).
		Return([]byte(`{"thisMonthTotal":120000,"growthPercent":12.5,"last6Months":[{"label":"Aug","value":90000},{"label":"Sep","value":95000}]}`), nil)

	svc := NewAdminService(api, zap.NewNop())
	dash, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, dash.TodayAppointments)
	assert.Nil(t, dash.TodaysRevenueDeltaPercent)
	assert.Equal(t, 4, dash.CasePipeline.InTreatment)
	assert.Equal(t, 2, dash.PatientSnapshot.NewPatientsToday)

	rev, err := svc.RevenueDashboard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rev.GrowthPercent)
	assert.InDelta(t, 12.5, *rev.GrowthPercent, 0.001)
	assert.Len(t, rev.Last6Months, 2)
}

func TestAdminService_LoadErrorIsWrapped(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, PathAdminCases, url.Values(nil)).
		Return(nil, &apiclient.APIError{StatusCode: 500, Message: "boom"})

	_, err := NewAdminService(api, zap.NewNop()).Cases(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apiclient.StatusCode(err))
	assert.Contains(t, err.Error(), "failed to load cases")
}
