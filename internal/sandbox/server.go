package sandbox

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/dental-console/internal/middleware"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx sandbox response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves the clinic REST API from a Store
type Server struct {
	store  *Store
	issuer *middleware.TokenIssuer
	logger *zap.Logger
}

// NewServer creates a new Server
func NewServer(store *Store, issuer *middleware.TokenIssuer, logger *zap.Logger) *Server {
	return &Server{
		store:  store,
		issuer: issuer,
		logger: logger,
	}
}

// Router builds the gin engine with middleware and every route
func (s *Server) Router(corsOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(s.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(s.logger))
	router.Use(middleware.ErrorLoggingMiddleware(s.logger))

	corsConfig := cors.DefaultConfig()
	if len(corsOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", middleware.AuthMiddleware(s.issuer))

	admin := authed.Group("/admin", middleware.RequireRole(string(model.RoleAdmin)))
	admin.GET("/appointments", s.adminAppointments)
	admin.POST("/appointments", s.createAppointment)
	admin.GET("/patients", s.adminPatients)
	admin.GET("/doctors", s.adminDoctors)
	admin.GET("/cases", s.adminCases)
	admin.GET("/cases/tracking-summary", s.trackingSummary)
	admin.GET("/cases/tracking-list", s.trackingList)
	admin.PATCH("/cases/:id", s.updateCaseStage)
	admin.GET("/inventory", s.inventoryList)
	admin.POST("/inventory", s.createInventoryItem)
	admin.GET("/dashboard-summary", s.dashboardSummary)
	admin.GET("/revenue-dashboard", s.revenueDashboard)

	doctor := authed.Group("/doctor", middleware.RequireRole(string(model.RoleDoctor)))
	doctor.GET("/appointments", s.doctorAppointments)
	doctor.PATCH("/appointments/:dbId/complete", s.completeAppointment)
	doctor.GET("/cases", s.doctorCases)
	doctor.POST("/cases", s.createDoctorCase)
	doctor.GET("/patients", s.doctorPatients)

	patient := authed.Group("/patient", middleware.RequireRole(string(model.RolePatient)))
	patient.GET("/dashboard", s.patientDashboard)
	patient.GET("/appointments", s.patientAppointments)
	patient.GET("/treatments", s.patientTreatments)

	authed.GET("/notifications", s.notificationList)
	authed.POST("/notifications/read-all", s.markAllRead)
	authed.POST("/notifications/:id/read", s.markRead)

	return router
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Code: code, Message: message})
}

// login checks the seeded credentials and issues a bearer token
func (s *Server) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required.")
		return
	}

	s.store.mu.RLock()
	var found *user
	for i := range s.store.users {
		if strings.EqualFold(s.store.users[i].Email, email) && s.store.users[i].Password == req.Password {
			u := s.store.users[i]
			found = &u
			break
		}
	}
	s.store.mu.RUnlock()

	if found == nil {
		s.logger.Info("login rejected", zap.String("email", email))
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password.")
		return
	}
	if req.Role != "" && !strings.EqualFold(string(req.Role), string(found.Role)) {
		respondError(c, http.StatusUnauthorized, "ROLE_MISMATCH", "This account cannot sign in as "+strings.ToLower(string(req.Role))+".")
		return
	}

	token, err := s.issuer.Issue(found.UID, string(found.Role), found.Name)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err), zap.String("user_id", found.UID))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Token: token,
		Role:  string(found.Role),
		UID:   found.UID,
		Name:  found.Name,
	})
}
