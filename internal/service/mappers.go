package service

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// Each mapper turns one raw backend item into its DTO. Field fallbacks are ordered:
// String stops at the first non-empty value, Coalesce at the first non-null one.

func mapAppointmentRow(r gjson.Result) model.AppointmentRow {
	return model.AppointmentRow{
		ID:      normalize.Coalesce(r, "", "id", "appointment_uid", "appointmentUid"),
		Date:    normalize.Coalesce(r, "", "date", "appointment_date"),
		Time:    normalize.Coalesce(r, "", "time", "start_time", "startTime"),
		Patient: normalize.String(r, normalize.Placeholder, "patient", "patientName", "patient_name"),
		Doctor:  normalize.String(r, normalize.Placeholder, "doctor", "doctorName", "doctor_name"),
		Type:    normalize.String(r, "", "type", "reason"),
		Status:  status.AppointmentLabel(r.Get("status").String()),
	}
}

func mapUserOption(r gjson.Result, unknown string) model.UserOption {
	return model.UserOption{
		ID:    normalize.Coalesce(r, "", "id", "uid"),
		Name:  normalize.String(r, unknown, "name", "full_name"),
		Phone: normalize.Coalesce(r, "", "phone"),
	}
}

func mapPatientRecord(r gjson.Result) model.PatientRecord {
	return model.PatientRecord{
		ID:        normalize.Coalesce(r, "", "id", "uid"),
		Name:      normalize.String(r, "Unknown patient", "name", "full_name"),
		Phone:     normalize.Coalesce(r, "", "phone"),
		LastVisit: normalize.String(r, "", "lastVisit", "last_visit"),
		Status:    normalize.String(r, "", "status"),
	}
}

func mapTrackingSummary(r gjson.Result) model.CaseTrackingSummary {
	summary := model.CaseTrackingSummary{
		TotalCases:         normalize.Int(r, 0, "totalCases"),
		HighRiskCount:      normalize.Int(r, 0, "highRiskCount"),
		NeedsFollowUpCount: normalize.Int(r, 0, "needsFollowUpCount"),
		ByStage:            make(map[model.CaseStage]int),
		UpdatedAt:          normalize.Coalesce(r, "", "updatedAt"),
	}
	r.Get("byStage").ForEach(func(key, value gjson.Result) bool {
		if stage, ok := status.ParseStage(key.String()); ok {
			summary.ByStage[stage] = int(value.Int())
		}
		return true
	})
	return summary
}

func mapTrackedCase(r gjson.Result) model.TrackedCase {
	id, _ := normalize.ID(r, "id")
	return model.TrackedCase{
		ID:                  id,
		CaseID:              normalize.String(r, "", "caseId", "case_uid", "id"),
		PatientName:         normalize.String(r, "Unknown patient", "patientName", "patient_name"),
		PatientUID:          normalize.Coalesce(r, "", "patientUid"),
		DoctorName:          normalize.String(r, "Unassigned", "doctorName", "doctor_name"),
		DoctorUID:           normalize.Coalesce(r, "", "doctorUid"),
		Type:                normalize.String(r, "", "type"),
		Stage:               status.NormalizeStage(r.Get("stage").String()),
		Priority:            model.CasePriority(strings.ToUpper(normalize.String(r, string(model.PriorityLow), "priority"))),
		RiskScore:           normalize.Float(r, 0, "riskScore", "risk_score"),
		NextAction:          normalize.Coalesce(r, "", "nextAction"),
		NextReviewDate:      normalize.Coalesce(r, "", "nextReviewDate"),
		LastUpdated:         normalize.Coalesce(r, "", "lastUpdated", "updatedAt"),
		AgentSummary:        normalize.Coalesce(r, "", "agentSummary"),
		AgentRecommendation: normalize.Coalesce(r, "", "agentRecommendation"),
		Flagged:             normalize.Bool(r, "flagged"),
	}
}

func mapCaseCard(r gjson.Result) model.CaseCard {
	return model.CaseCard{
		ID:      normalize.Coalesce(r, "", "id", "caseId"),
		Patient: normalize.Coalesce(r, "", "patient", "patientName"),
		Doctor:  normalize.Coalesce(r, "", "doctor", "doctorName"),
		Type:    normalize.Coalesce(r, "", "type"),
		Stage:   status.NormalizeStage(r.Get("stage").String()),
	}
}

func mapInventoryItem(r gjson.Result) model.InventoryItem {
	stock := normalize.Int(r, 0, "stock")
	threshold := normalize.OptionalInt(r, "reorderThreshold", "reorder_threshold")
	return model.InventoryItem{
		ID:               normalize.Coalesce(r, "", "id", "itemCode", "item_code"),
		Name:             normalize.String(r, normalize.Placeholder, "name"),
		Category:         normalize.String(r, "Uncategorized", "category"),
		Stock:            stock,
		Status:           status.InventoryStatus(r.Get("status").String(), stock, threshold),
		ReorderThreshold: threshold,
		ExpiryDate:       normalize.Coalesce(r, "", "expiryDate", "expiry_date"),
	}
}

func mapDashboardSummary(r gjson.Result) model.DashboardSummary {
	return model.DashboardSummary{
		TodayAppointments:         normalize.Int(r, 0, "todayAppointments"),
		TodayAppointmentsDelta:    normalize.Int(r, 0, "todayAppointmentsDelta"),
		LowStockItems:             normalize.Int(r, 0, "lowStockItems"),
		TodaysRevenue:             normalize.Float(r, 0, "todaysRevenue"),
		TodaysRevenueDeltaPercent: normalize.OptionalFloat(r, "todaysRevenueDeltaPercent"),
		ActiveCases:               normalize.Int(r, 0, "activeCases"),
		CasePipeline: model.CasePipeline{
			New:              normalize.Int(r, 0, "casePipeline.new"),
			InTreatment:      normalize.Int(r, 0, "casePipeline.inTreatment"),
			AwaitingFollowUp: normalize.Int(r, 0, "casePipeline.awaitingFollowUp"),
		},
		PatientSnapshot: model.PatientSnapshot{
			NewPatientsToday:           normalize.Int(r, 0, "patientSnapshot.newPatientsToday"),
			ReturningPatientsToday:     normalize.Int(r, 0, "patientSnapshot.returningPatientsToday"),
			CancelledAppointmentsToday: normalize.Int(r, 0, "patientSnapshot.cancelledAppointmentsToday"),
		},
		AsOf: normalize.Coalesce(r, "", "asOf"),
	}
}

func mapRevenueDashboard(r gjson.Result) model.RevenueDashboard {
	out := model.RevenueDashboard{
		ThisMonthTotal: normalize.Float(r, 0, "thisMonthTotal"),
		PendingOverdue: normalize.Float(r, 0, "pendingOverdue"),
		AvgPerDay:      normalize.Float(r, 0, "avgPerDay"),
		GrowthPercent:  normalize.OptionalFloat(r, "growthPercent"),
	}
	for _, m := range r.Get("last6Months").Array() {
		out.Last6Months = append(out.Last6Months, model.MonthlyRevenue{
			Label: normalize.String(m, "", "label", "month"),
			Value: normalize.Float(m, 0, "value", "total"),
		})
	}
	return out
}

func mapDoctorAppointment(r gjson.Result) model.DoctorAppointment {
	dbID, ok := normalize.ID(r, "dbId", "id")
	return model.DoctorAppointment{
		DBID:    dbID,
		HasDBID: ok,
		ID:      normalize.Coalesce(r, "", "id", "appointment_uid", "appointmentUid", "dbId"),
		Date:    normalize.Coalesce(r, "", "date"),
		Time:    normalize.Coalesce(r, "", "time"),
		Patient: normalize.Coalesce(r, normalize.Placeholder, "patient"),
		Reason:  normalize.Coalesce(r, "General visit", "reason", "type"),
		Room:    normalize.Coalesce(r, normalize.Placeholder, "room"),
		Status:  status.AppointmentLabel(r.Get("status").String()),
	}
}

func firstTen(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func mapDoctorCase(r gjson.Result) model.DoctorCase {
	raw := r.Get("stage").String()
	return model.DoctorCase{
		ID:          normalize.String(r, normalize.Placeholder, "id", "caseId"),
		PatientName: normalize.String(r, "Unknown patient", "patientName"),
		ToothRegion: normalize.String(r, "Not specified", "toothRegion"),
		Diagnosis:   normalize.String(r, "General case", "diagnosis", "type"),
		Stage:       status.DoctorStageLabel(raw),
		RawStage:    raw,
		CreatedAt:   firstTen(normalize.String(r, "", "createdAt")),
		UpdatedAt:   firstTen(normalize.String(r, "", "updatedAt", "lastUpdated")),
	}
}

func mapDoctorPatient(r gjson.Result) model.DoctorPatient {
	return model.DoctorPatient{
		ID:          normalize.Coalesce(r, "", "id", "uid"),
		Name:        normalize.String(r, "Unknown patient", "name", "full_name"),
		Phone:       normalize.Coalesce(r, "", "phone"),
		LastVisit:   normalize.String(r, "", "lastVisit", "last_visit"),
		ActiveCases: normalize.Int(r, 0, "activeCases"),
	}
}

func mapPatientAppointment(r gjson.Result) model.PatientAppointment {
	return model.PatientAppointment{
		ID:         normalize.Coalesce(r, "", "id"),
		Date:       normalize.Coalesce(r, "", "date"),
		Time:       normalize.Coalesce(r, "", "time"),
		DoctorName: normalize.String(r, normalize.Placeholder, "doctorName", "doctor"),
		Reason:     normalize.String(r, "", "reason", "type"),
		Status:     status.AppointmentLabel(r.Get("status").String()),
		Location:   normalize.Coalesce(r, "", "location"),
		Notes:      normalize.Coalesce(r, "", "notes"),
	}
}

func mapTreatmentSummary(r gjson.Result) model.TreatmentSummary {
	return model.TreatmentSummary{
		ID:          normalize.Coalesce(r, "", "id"),
		Title:       normalize.String(r, "", "title"),
		LastUpdated: normalize.Coalesce(r, "", "lastUpdated"),
		Stage:       normalize.String(r, "", "stage"),
		Snippet:     normalize.String(r, "", "snippet", "summary"),
	}
}

func mapTreatment(r gjson.Result) model.Treatment {
	return model.Treatment{
		ID:          normalize.Coalesce(r, "", "id"),
		Title:       normalize.String(r, "", "title"),
		Stage:       normalize.String(r, "", "stage"),
		LastUpdated: normalize.Coalesce(r, "", "lastUpdated"),
		Summary:     normalize.String(r, "", "summary"),
		Details:     normalize.Coalesce(r, "", "details"),
	}
}

func mapPayment(r gjson.Result) model.Payment {
	return model.Payment{
		ID:          normalize.Coalesce(r, "", "id"),
		Date:        normalize.Coalesce(r, "", "date"),
		Description: normalize.String(r, "Dental treatment invoice", "description"),
		Amount:      normalize.Float(r, 0, "amount"),
		Currency:    normalize.Coalesce(r, "", "currency"),
		Status:      normalize.Coalesce(r, "", "status"),
	}
}

func mapNotification(r gjson.Result) model.Notification {
	id, _ := normalize.ID(r, "id")
	return model.Notification{
		ID:          id,
		Channel:     normalize.Coalesce(r, "", "channel"),
		Type:        normalize.Coalesce(r, "", "type"),
		Title:       normalize.Coalesce(r, "", "title"),
		Message:     normalize.Coalesce(r, "", "message", "body"),
		Status:      normalize.Coalesce(r, "", "status"),
		CreatedAt:   normalize.Coalesce(r, "", "created_at", "createdAt"),
		ScheduledAt: normalize.Coalesce(r, "", "scheduled_at", "scheduledAt"),
	}
}

func mapItems[T any](body []byte, fn func(gjson.Result) T, paths ...string) []T {
	items := normalize.Items(body, paths...)
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
