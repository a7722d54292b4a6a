package sandbox

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/dental-console/internal/middleware"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// MsgSlotTaken is the conflict message for a double-booked doctor
const MsgSlotTaken = "The doctor already has an appointment in this slot."

func sortAppointments(items []*appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].Start < items[j].Start
	})
}

func (s *Server) adminAppointments(c *gin.Context) {
	date := c.Query("date")

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	if date == "" {
		date = s.store.todayString()
	}
	var matched []*appointment
	for _, a := range s.store.appointments {
		if a.Date == date {
			matched = append(matched, a)
		}
	}
	sortAppointments(matched)

	items := make([]gin.H, 0, len(matched))
	for _, a := range matched {
		items = append(items, gin.H{
			"id":      a.UID,
			"date":    a.Date,
			"time":    formatClock(a.Start),
			"patient": s.store.nameOf(a.PatientUID),
			"doctor":  s.store.nameOf(a.DoctorUID),
			"type":    a.Type,
			"status":  a.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// createAppointment books a visit. A doctor already busy within SlotMinutes of the
// requested start gets a 409 with free alternatives.
func (s *Server) createAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.Date), s.store.loc)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "Date must be YYYY-MM-DD.")
		return
	}
	start, err := parseClock(req.Time)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_TIME", "Time must be HH:MM.")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	patient, ok := s.store.userByUID(req.PatientUID)
	if !ok || patient.Role != model.RolePatient {
		respondError(c, http.StatusBadRequest, "UNKNOWN_PATIENT", "Patient not found.")
		return
	}
	doctor, ok := s.store.userByUID(req.DoctorUID)
	if !ok || doctor.Role != model.RoleDoctor {
		respondError(c, http.StatusBadRequest, "UNKNOWN_DOCTOR", "Doctor not found.")
		return
	}

	date := day.Format(dateLayout)
	if !s.store.isFree(doctor.UID, date, start) {
		slots := s.store.suggestSlots(doctor.UID, day)
		s.logger.Info("appointment slot conflict",
			zap.String("doctor_uid", doctor.UID),
			zap.String("date", date),
			zap.String("time", formatClock(start)),
			zap.Int("suggestions", len(slots)),
		)
		c.JSON(http.StatusConflict, gin.H{
			"conflict":       true,
			"message":        MsgSlotTaken,
			"suggestedSlots": slots,
		})
		return
	}

	reqStatus := strings.ToUpper(strings.TrimSpace(req.Status))
	if reqStatus == "" {
		reqStatus = status.CodePending
	}
	a := s.store.addAppointment(appointment{
		PatientUID: patient.UID,
		DoctorUID:  doctor.UID,
		Date:       date,
		Start:      start,
		Type:       strings.TrimSpace(req.Type),
		Status:     reqStatus,
		Room:       "Room 1",
	})
	s.store.notify(doctor.UID, "APPOINTMENT", "New appointment",
		patient.Name+" booked "+date+" at "+formatClock(start)+".")

	s.logger.Info("appointment created",
		zap.String("appointment_id", a.UID),
		zap.String("created_by", c.GetString(middleware.KeyUserID)),
	)
	c.JSON(http.StatusCreated, gin.H{"id": a.UID, "dbId": a.DBID})
}

func (s *Server) userOptions(c *gin.Context, role model.Role) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	items := make([]gin.H, 0)
	for _, u := range s.store.usersWithRole(role) {
		items = append(items, gin.H{"id": u.UID, "name": u.Name, "phone": u.Phone})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) adminDoctors(c *gin.Context) {
	s.userOptions(c, model.RoleDoctor)
}

// lastVisit is the latest completed visit date of a patient, optionally with one doctor
func (s *Store) lastVisit(patientUID, doctorUID string) string {
	last := ""
	for _, a := range s.appointments {
		if a.PatientUID != patientUID || (doctorUID != "" && a.DoctorUID != doctorUID) {
			continue
		}
		if strings.EqualFold(a.Status, status.CodeCompleted) && a.Date > last {
			last = a.Date
		}
	}
	return last
}

// adminPatients serves both the booking picker and the directory
func (s *Server) adminPatients(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	items := make([]gin.H, 0)
	for _, u := range s.store.usersWithRole(model.RolePatient) {
		state := "Active"
		if s.store.lastVisit(u.UID, "") == "" {
			state = "New"
		}
		items = append(items, gin.H{
			"id":        u.UID,
			"name":      u.Name,
			"phone":     u.Phone,
			"lastVisit": s.store.lastVisit(u.UID, ""),
			"status":    state,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) adminCases(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	items := make([]gin.H, 0, len(s.store.cases))
	for _, cs := range s.store.cases {
		items = append(items, gin.H{
			"id":      cs.UID,
			"patient": cs.PatientName,
			"doctor":  s.store.nameOf(cs.DoctorUID),
			"type":    cs.Type,
			"stage":   cs.Stage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Store) needsFollowUp(cs *clinicalCase) bool {
	if cs.Stage == model.StageWaitingOnPatient {
		return true
	}
	return cs.Stage != model.StageClosed && cs.NextReviewDate != "" && cs.NextReviewDate <= s.todayString()
}

func (s *Server) trackingSummary(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	byStage := make(map[model.CaseStage]int, len(model.AllStages))
	for _, stage := range model.AllStages {
		byStage[stage] = 0
	}
	highRisk, followUp := 0, 0
	for _, cs := range s.store.cases {
		byStage[cs.Stage]++
		if status.IsHighRisk(cs.RiskScore) {
			highRisk++
		}
		if s.store.needsFollowUp(cs) {
			followUp++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCases":         len(s.store.cases),
		"highRiskCount":      highRisk,
		"needsFollowUpCount": followUp,
		"byStage":            byStage,
		"updatedAt":          s.store.now().UTC().Format(time.RFC3339),
	})
}

func (s *Store) trackedCase(cs *clinicalCase) gin.H {
	return gin.H{
		"id":                  cs.ID,
		"caseId":              cs.UID,
		"patientName":         cs.PatientName,
		"patientUid":          cs.PatientUID,
		"doctorName":          s.nameOf(cs.DoctorUID),
		"doctorUid":           cs.DoctorUID,
		"type":                cs.Type,
		"stage":               cs.Stage,
		"priority":            cs.Priority,
		"riskScore":           cs.RiskScore,
		"nextAction":          cs.NextAction,
		"nextReviewDate":      cs.NextReviewDate,
		"lastUpdated":         cs.UpdatedAt.UTC().Format(time.RFC3339),
		"agentSummary":        cs.AgentSummary,
		"agentRecommendation": cs.AgentRecommendation,
		"flagged":             cs.Flagged,
	}
}

func (s *Server) trackingList(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	ordered := make([]*clinicalCase, len(s.store.cases))
	copy(ordered, s.store.cases)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].RiskScore > ordered[j].RiskScore })
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	cases := make([]gin.H, 0, len(ordered))
	for _, cs := range ordered {
		cases = append(cases, s.store.trackedCase(cs))
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

func (s *Server) updateCaseStage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Case id must be numeric.")
		return
	}
	var body struct {
		Stage string `json:"stage"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	stage, ok := status.ParseStage(body.Stage)
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_STAGE", "Unknown stage "+strconv.Quote(body.Stage)+".")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, cs := range s.store.cases {
		if cs.ID != id {
			continue
		}
		cs.Stage = stage
		cs.UpdatedAt = s.store.now()
		s.logger.Info("case stage updated",
			zap.Int64("case_id", id),
			zap.String("stage", string(stage)),
			zap.String("updated_by", c.GetString(middleware.KeyUserID)),
		)
		c.JSON(http.StatusOK, gin.H{"case": s.store.trackedCase(cs)})
		return
	}
	respondError(c, http.StatusNotFound, "NOT_FOUND", "Case not found.")
}

func (s *Server) inventoryList(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	items := make([]gin.H, 0, len(s.store.inventory))
	for _, it := range s.store.inventory {
		threshold := it.Threshold
		items = append(items, gin.H{
			"id":               it.Code,
			"name":             it.Name,
			"category":         it.Category,
			"stock":            it.Stock,
			"reorderThreshold": threshold,
			"expiryDate":       it.Expiry,
			"status":           status.ComputeInventoryStatus(it.Stock, &threshold),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// createInventoryItem adds a stock line; a duplicate item code is a plain 409
func (s *Server) createInventoryItem(c *gin.Context) {
	var req model.CreateInventoryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	code := strings.TrimSpace(req.ItemCode)
	name := strings.TrimSpace(req.Name)
	switch {
	case code == "":
		respondError(c, http.StatusBadRequest, "INVALID_ITEM", "itemCode is required")
		return
	case name == "":
		respondError(c, http.StatusBadRequest, "INVALID_ITEM", "name is required")
		return
	case req.Stock < 0 || req.ReorderThreshold < 0:
		respondError(c, http.StatusBadRequest, "INVALID_ITEM", "stock and reorderThreshold must not be negative")
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "Uncategorized"
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, it := range s.store.inventory {
		if strings.EqualFold(it.Code, code) {
			respondError(c, http.StatusConflict, "DUPLICATE_ITEM", "Item code "+code+" already exists.")
			return
		}
	}
	s.store.inventory = append(s.store.inventory, &stockItem{
		Code:      code,
		Name:      name,
		Category:  category,
		Stock:     req.Stock,
		Threshold: req.ReorderThreshold,
		Expiry:    req.ExpiryDate,
	})
	c.JSON(http.StatusCreated, gin.H{"id": code})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percentChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	p := round2((current - previous) / previous * 100)
	return &p
}

func (s *Server) dashboardSummary(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	today := s.store.todayString()
	yesterday := s.store.today().AddDate(0, 0, -1).Format(dateLayout)

	var todayCount, yesterdayCount, cancelled, newPatients, returning int
	for _, a := range s.store.appointments {
		switch a.Date {
		case yesterday:
			yesterdayCount++
		case today:
			if strings.EqualFold(a.Status, "CANCELLED") {
				cancelled++
				continue
			}
			todayCount++
			if s.store.visitedBefore(a.PatientUID, today) {
				returning++
			} else {
				newPatients++
			}
		}
	}

	var revenueToday, revenueYesterday float64
	for _, p := range s.store.payments {
		if !status.PaymentPaid(p.Status) {
			continue
		}
		switch p.Date {
		case today:
			revenueToday += p.Amount
		case yesterday:
			revenueYesterday += p.Amount
		}
	}

	lowStock := 0
	for _, it := range s.store.inventory {
		threshold := it.Threshold
		if status.IsLowStock(status.ComputeInventoryStatus(it.Stock, &threshold)) {
			lowStock++
		}
	}

	active := 0
	pipeline := model.CasePipeline{}
	for _, cs := range s.store.cases {
		if cs.Stage != model.StageClosed {
			active++
		}
		switch cs.Stage {
		case model.StageNew:
			pipeline.New++
		case model.StageInTreatment:
			pipeline.InTreatment++
		case model.StageWaitingOnPatient:
			pipeline.AwaitingFollowUp++
		}
	}

	c.JSON(http.StatusOK, model.DashboardSummary{
		TodayAppointments:         todayCount,
		TodayAppointmentsDelta:    todayCount - yesterdayCount,
		LowStockItems:             lowStock,
		TodaysRevenue:             revenueToday,
		TodaysRevenueDeltaPercent: percentChange(revenueToday, revenueYesterday),
		ActiveCases:               active,
		CasePipeline:              pipeline,
		PatientSnapshot: model.PatientSnapshot{
			NewPatientsToday:           newPatients,
			ReturningPatientsToday:     returning,
			CancelledAppointmentsToday: cancelled,
		},
		AsOf: s.store.now().UTC().Format(time.RFC3339),
	})
}

func (s *Store) visitedBefore(patientUID, date string) bool {
	for _, a := range s.appointments {
		if a.PatientUID == patientUID && a.Date < date && strings.EqualFold(a.Status, status.CodeCompleted) {
			return true
		}
	}
	return false
}

func (s *Server) revenueDashboard(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	today := s.store.today()
	month := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.store.loc)

	totals := make(map[string]float64)
	pending := 0.0
	for _, p := range s.store.payments {
		if !status.PaymentPaid(p.Status) {
			pending += p.Amount
			continue
		}
		if len(p.Date) >= 7 {
			totals[p.Date[:7]] += p.Amount
		}
	}

	last6 := make([]model.MonthlyRevenue, 0, 6)
	for i := 5; i >= 0; i-- {
		m := month.AddDate(0, -i, 0)
		last6 = append(last6, model.MonthlyRevenue{
			Label: m.Format("Jan"),
			Value: totals[m.Format("2006-01")],
		})
	}

	thisMonth := totals[month.Format("2006-01")]
	lastMonth := totals[month.AddDate(0, -1, 0).Format("2006-01")]

	c.JSON(http.StatusOK, model.RevenueDashboard{
		ThisMonthTotal: thisMonth,
		PendingOverdue: pending,
		AvgPerDay:      round2(thisMonth / float64(today.Day())),
		GrowthPercent:  percentChange(thisMonth, lastMonth),
		Last6Months:    last6,
	})
}
