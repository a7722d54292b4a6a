package sandbox

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/dental-console/internal/middleware"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// ClinicLocation is reported on every patient visit
const ClinicLocation = "Smile Care Dental, Koramangala"

func (s *Store) patientAppointments(patientUID string, upcomingOnly bool) []gin.H {
	today := s.todayString()
	var matched []*appointment
	for _, a := range s.appointments {
		if a.PatientUID != patientUID {
			continue
		}
		if upcomingOnly && (a.Date < today || status.AppointmentTerminal(a.Status)) {
			continue
		}
		matched = append(matched, a)
	}
	sortAppointments(matched)

	items := make([]gin.H, 0, len(matched))
	for _, a := range matched {
		items = append(items, gin.H{
			"id":         a.UID,
			"date":       a.Date,
			"time":       formatClock(a.Start),
			"doctorName": s.nameOf(a.DoctorUID),
			"reason":     a.Type,
			"status":     a.Status,
			"location":   ClinicLocation,
			"notes":      a.Notes,
		})
	}
	return items
}

func (s *Store) patientCases(patientUID string) []*clinicalCase {
	var out []*clinicalCase
	for _, cs := range s.cases {
		if cs.PatientUID == patientUID {
			out = append(out, cs)
		}
	}
	return out
}

func caseSummary(cs *clinicalCase) string {
	if cs.AgentSummary != "" {
		return cs.AgentSummary
	}
	return cs.Diagnosis + " (" + cs.ToothRegion + ")"
}

func (s *Server) patientDashboard(c *gin.Context) {
	patientUID := c.GetString(middleware.KeyUserID)

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	summaries := make([]gin.H, 0)
	for _, cs := range s.store.patientCases(patientUID) {
		summaries = append(summaries, gin.H{
			"id":          cs.UID,
			"title":       cs.Type,
			"lastUpdated": cs.UpdatedAt.UTC().Format(time.RFC3339),
			"stage":       status.StageLabel(cs.Stage),
			"snippet":     caseSummary(cs),
		})
	}

	payments := make([]model.Payment, 0)
	for _, p := range s.store.payments {
		if p.PatientUID != patientUID {
			continue
		}
		payments = append(payments, model.Payment{
			ID:          p.ID,
			Date:        p.Date,
			Description: p.Description,
			Amount:      p.Amount,
			Currency:    p.Currency,
			Status:      p.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"upcomingAppointments": s.store.patientAppointments(patientUID, true),
		"treatmentSummaries":   summaries,
		"payments":             payments,
	})
}

func (s *Server) patientAppointments(c *gin.Context) {
	patientUID := c.GetString(middleware.KeyUserID)

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"items": s.store.patientAppointments(patientUID, false)})
}

func (s *Server) patientTreatments(c *gin.Context) {
	patientUID := c.GetString(middleware.KeyUserID)

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	items := make([]gin.H, 0)
	for _, cs := range s.store.patientCases(patientUID) {
		details := "Region: " + cs.ToothRegion + ". Treating doctor: " + s.store.nameOf(cs.DoctorUID) + "."
		if cs.NextAction != "" {
			details += " Next step: " + cs.NextAction + "."
		}
		items = append(items, gin.H{
			"id":          cs.UID,
			"title":       cs.Type,
			"stage":       status.StageLabel(cs.Stage),
			"lastUpdated": cs.UpdatedAt.UTC().Format(time.RFC3339),
			"summary":     caseSummary(cs),
			"details":     details,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
