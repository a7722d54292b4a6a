package sandbox

import (
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

func (s *Server) doctorAppointments(c *gin.Context) {
	doctorUID := c.GetString(middleware.KeyUserID)

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	date := c.Query("date")
	if date == "" {
		date = s.store.todayString()
	}
	var matched []*appointment
	for _, a := range s.store.appointments {
		if a.DoctorUID == doctorUID && a.Date == date {
			matched = append(matched, a)
		}
	}
	sortAppointments(matched)

	items := make([]gin.H, 0, len(matched))
	for _, a := range matched {
		items = append(items, doctorAppointmentJSON(s.store, a))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func doctorAppointmentJSON(s *Store, a *appointment) gin.H {
	return gin.H{
		"dbId":    a.DBID,
		"id":      a.UID,
		"date":    a.Date,
		"time":    formatClock(a.Start),
		"patient": s.nameOf(a.PatientUID),
		"reason":  a.Type,
		"room":    a.Room,
		"status":  a.Status,
	}
}

// completeAppointment marks one of the caller's visits completed. Terminal visits are
// rejected with 409 so a stale console cannot revive a cancelled visit.
func (s *Server) completeAppointment(c *gin.Context) {
	dbID, err := strconv.ParseInt(c.Param("dbId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Appointment id must be numeric.")
		return
	}
	doctorUID := c.GetString(middleware.KeyUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, a := range s.store.appointments {
		if a.DBID != dbID || a.DoctorUID != doctorUID {
			continue
		}
		if status.AppointmentTerminal(a.Status) {
			respondError(c, http.StatusConflict, "ALREADY_CLOSED", "Appointment is already "+strings.ToLower(status.AppointmentLabel(a.Status))+".")
			return
		}
		a.Status = status.CodeCompleted
		s.logger.Info("appointment completed",
			zap.Int64("db_id", dbID),
			zap.String("doctor_uid", doctorUID),
		)
		c.JSON(http.StatusOK, gin.H{"appointment": doctorAppointmentJSON(s.store, a)})
		return
	}
	respondError(c, http.StatusNotFound, "NOT_FOUND", "Appointment not found.")
}

func doctorCaseJSON(cs *clinicalCase) gin.H {
	return gin.H{
		"id":          cs.UID,
		"patientName": cs.PatientName,
		"toothRegion": cs.ToothRegion,
		"diagnosis":   cs.Diagnosis,
		"stage":       cs.Stage,
		"createdAt":   cs.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":   cs.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) doctorCases(c *gin.Context) {
	doctorUID := c.GetString(middleware.KeyUserID)

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	cases := make([]gin.H, 0)
	for _, cs := range s.store.cases {
		if cs.DoctorUID == doctorUID {
			cases = append(cases, doctorCaseJSON(cs))
		}
	}
	c.JSON(http.StatusOK, gin.H{"cases": cases})
}

func (s *Server) createDoctorCase(c *gin.Context) {
	var req model.CreateDoctorCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	patientName := strings.TrimSpace(req.PatientName)
	diagnosis := strings.TrimSpace(req.Diagnosis)
	if patientName == "" || diagnosis == "" {
		respondError(c, http.StatusBadRequest, "INVALID_CASE", "patientName and diagnosis are required")
		return
	}
	stage := model.StageNew
	if req.Stage != "" {
		parsed, ok := status.ParseStage(string(req.Stage))
		if !ok {
			respondError(c, http.StatusBadRequest, "INVALID_STAGE", "Unknown stage "+strconv.Quote(string(req.Stage))+".")
			return
		}
		stage = parsed
	}
	doctorUID := c.GetString(middleware.KeyUserID)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	patientUID := ""
	for _, u := range s.store.usersWithRole(model.RolePatient) {
		if strings.EqualFold(u.Name, patientName) {
			patientUID = u.UID
			break
		}
	}

	now := s.store.now()
	cs := s.store.addCase(clinicalCase{
		PatientUID:  patientUID,
		PatientName: patientName,
		DoctorUID:   doctorUID,
		Type:        diagnosis,
		ToothRegion: strings.TrimSpace(req.ToothRegion),
		Diagnosis:   diagnosis,
		Stage:       stage,
		Priority:    model.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	s.logger.Info("case created",
		zap.String("case_id", cs.UID),
		zap.String("doctor_uid", doctorUID),
	)
	c.JSON(http.StatusCreated, gin.H{"case": doctorCaseJSON(cs)})
}

// doctorPatients lists everyone with a visit or a case under the caller
func (s *Server) doctorPatients(c *gin.Context) {
	doctorUID := c.GetString(middleware.KeyUserID)

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	seen := make(map[string]bool)
	for _, a := range s.store.appointments {
		if a.DoctorUID == doctorUID {
			seen[a.PatientUID] = true
		}
	}
	active := make(map[string]int)
	for _, cs := range s.store.cases {
		if cs.DoctorUID != doctorUID || cs.PatientUID == "" {
			continue
		}
		seen[cs.PatientUID] = true
		if cs.Stage != model.StageClosed {
			active[cs.PatientUID]++
		}
	}

	uids := make([]string, 0, len(seen))
	for uid := range seen {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	items := make([]gin.H, 0, len(uids))
	for _, uid := range uids {
		u, ok := s.store.userByUID(uid)
		if !ok {
			continue
		}
		items = append(items, gin.H{
			"id":          u.UID,
			"name":        u.Name,
			"phone":       u.Phone,
			"lastVisit":   s.store.lastVisit(u.UID, doctorUID),
			"activeCases": active[u.UID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
