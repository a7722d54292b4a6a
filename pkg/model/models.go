package model

// Role identifies which console a session belongs to
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Session represents an authenticated console session
type Session struct {
	Token    string `json:"token"`
	Role     Role   `json:"role"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// ThemeMode is the persisted console theme preference
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Preferences holds persisted presentation settings
type Preferences struct {
	Theme       ThemeMode `json:"theme"`
	SidebarOpen bool      `json:"sidebarOpen"`
}

// AppointmentRow is one row of the admin schedule
type AppointmentRow struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Type    string `json:"type"`
	Status  string `json:"status"`
}

// CreateAppointmentRequest is the body of POST /api/admin/appointments
type CreateAppointmentRequest struct {
	PatientUID string `json:"patientUid"`
	DoctorUID  string `json:"doctorUid"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Type       string `json:"type"`
	Status     string `json:"status"`
}

// SuggestedSlot is an alternative appointment window offered after a slot conflict
type SuggestedSlot struct {
	Date                 string `json:"date"`
	StartTime            string `json:"startTime"`
	EndTime              string `json:"endTime"`
	PredictedDurationMin int    `json:"predictedDurationMin"`
}

// UserOption is an entry in a patient or doctor picker
type UserOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// PatientRecord is one entry of the admin patient directory
type PatientRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	LastVisit string `json:"lastVisit,omitempty"`
	Status    string `json:"status"`
}

// CaseStage is the pipeline position of a clinical case
type CaseStage string

const (
	StageNew              CaseStage = "NEW"
	StageInTreatment      CaseStage = "IN_TREATMENT"
	StageWaitingOnPatient CaseStage = "WAITING_ON_PATIENT"
	StageReadyToClose     CaseStage = "READY_TO_CLOSE"
	StageClosed           CaseStage = "CLOSED"
	StageBlocked          CaseStage = "BLOCKED"
)

// AllStages lists the pipeline stages in display order
var AllStages = []CaseStage{
	StageNew,
	StageInTreatment,
	StageWaitingOnPatient,
	StageReadyToClose,
	StageClosed,
	StageBlocked,
}

// CasePriority is the triage priority of a tracked case
type CasePriority string

const (
	PriorityLow    CasePriority = "LOW"
	PriorityMedium CasePriority = "MEDIUM"
	PriorityHigh   CasePriority = "HIGH"
)

// TrackedCase is a case as shown on the admin case-tracking board
type TrackedCase struct {
	ID                  int64        `json:"id"`
	CaseID              string       `json:"caseId"`
	PatientName         string       `json:"patientName"`
	PatientUID          string       `json:"patientUid,omitempty"`
	DoctorName          string       `json:"doctorName"`
	DoctorUID           string       `json:"doctorUid,omitempty"`
	Type                string       `json:"type"`
	Stage               CaseStage    `json:"stage"`
	Priority            CasePriority `json:"priority"`
	RiskScore           float64      `json:"riskScore"`
	NextAction          string       `json:"nextAction,omitempty"`
	NextReviewDate      string       `json:"nextReviewDate,omitempty"`
	LastUpdated         string       `json:"lastUpdated"`
	AgentSummary        string       `json:"agentSummary,omitempty"`
	AgentRecommendation string       `json:"agentRecommendation,omitempty"`
	Flagged             bool         `json:"flagged"`
}

// CaseTrackingSummary is the header of the case-tracking board
type CaseTrackingSummary struct {
	TotalCases         int               `json:"totalCases"`
	HighRiskCount      int               `json:"highRiskCount"`
	NeedsFollowUpCount int               `json:"needsFollowUpCount"`
	ByStage            map[CaseStage]int `json:"byStage"`
	UpdatedAt          string            `json:"updatedAt,omitempty"`
}

// CaseStageUpdate is what the backend returns after a stage PATCH
type CaseStageUpdate struct {
	Stage       CaseStage `json:"stage,omitempty"`
	LastUpdated string    `json:"lastUpdated,omitempty"`
}

// CaseCard is a case on the admin case pipeline
type CaseCard struct {
	ID      string    `json:"id"`
	Patient string    `json:"patient"`
	Doctor  string    `json:"doctor"`
	Type    string    `json:"type"`
	Stage   CaseStage `json:"stage"`
}

// Inventory status labels
const (
	InventoryHealthy     = "Healthy"
	InventoryReorderSoon = "Reorder soon"
	InventoryLow         = "Low"
)

// InventoryItem is a stock line in the clinic inventory
type InventoryItem struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	Stock            int    `json:"stock"`
	Status           string `json:"status"`
	ReorderThreshold *int   `json:"reorderThreshold,omitempty"`
	ExpiryDate       string `json:"expiryDate,omitempty"`
}

// CreateInventoryPayload is the body of POST /api/admin/inventory
type CreateInventoryPayload struct {
	ItemCode         string  `json:"itemCode"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Stock            int     `json:"stock"`
	ReorderThreshold int     `json:"reorderThreshold"`
	ExpiryDate       *string `json:"expiryDate"`
}

// CasePipeline is the case breakdown on the admin dashboard
type CasePipeline struct {
	New              int `json:"new"`
	InTreatment      int `json:"inTreatment"`
	AwaitingFollowUp int `json:"awaitingFollowUp"`
}

// PatientSnapshot is the patient breakdown on the admin dashboard
type PatientSnapshot struct {
	NewPatientsToday           int `json:"newPatientsToday"`
	ReturningPatientsToday     int `json:"returningPatientsToday"`
	CancelledAppointmentsToday int `json:"cancelledAppointmentsToday"`
}

// DashboardSummary is the admin home summary
type DashboardSummary struct {
	TodayAppointments         int             `json:"todayAppointments"`
	TodayAppointmentsDelta    int             `json:"todayAppointmentsDelta"`
	LowStockItems             int             `json:"lowStockItems"`
	TodaysRevenue             float64         `json:"todaysRevenue"`
	TodaysRevenueDeltaPercent *float64        `json:"todaysRevenueDeltaPercent"`
	ActiveCases               int             `json:"activeCases"`
	CasePipeline              CasePipeline    `json:"casePipeline"`
	PatientSnapshot           PatientSnapshot `json:"patientSnapshot"`
	AsOf                      string          `json:"asOf"`
}

// MonthlyRevenue is one bar of the revenue chart
type MonthlyRevenue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RevenueDashboard is the admin revenue view
type RevenueDashboard struct {
	ThisMonthTotal float64          `json:"thisMonthTotal"`
	PendingOverdue float64          `json:"pendingOverdue"`
	AvgPerDay      float64          `json:"avgPerDay"`
	GrowthPercent  *float64         `json:"growthPercent"`
	Last6Months    []MonthlyRevenue `json:"last6Months"`
}

// DoctorAppointment is one visit on a doctor's schedule
type DoctorAppointment struct {
	// DBID is the numeric database id used by the complete endpoint; zero when HasDBID is false
	DBID    int64  `json:"dbId"`
	HasDBID bool   `json:"-"`
	ID      string `json:"id"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Patient string `json:"patient"`
	Reason  string `json:"reason"`
	Room    string `json:"room"`
	Status  string `json:"status"`
}

// Doctor-facing case stage labels
const (
	DoctorStageNew              = "New"
	DoctorStageInTreatment      = "In treatment"
	DoctorStageWaitingOnPatient = "Waiting on patient"
	DoctorStageCompleted        = "Completed"
)

// DoctorCase is a case on the doctor's case list
type DoctorCase struct {
	ID          string `json:"id"`
	PatientName string `json:"patientName"`
	ToothRegion string `json:"toothRegion"`
	Diagnosis   string `json:"diagnosis"`
	Stage       string `json:"stage"`
	RawStage    string `json:"rawStage,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// CreateDoctorCaseRequest is the body of POST /api/doctor/cases
type CreateDoctorCaseRequest struct {
	PatientName string    `json:"patientName"`
	ToothRegion string    `json:"toothRegion"`
	Diagnosis   string    `json:"diagnosis"`
	Stage       CaseStage `json:"stage"`
}

// DoctorPatient is a patient on a doctor's panel
type DoctorPatient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	LastVisit   string `json:"lastVisit,omitempty"`
	ActiveCases int    `json:"activeCases"`
}

// PatientAppointment is a visit as seen by the patient
type PatientAppointment struct {
	ID         string `json:"id"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	DoctorName string `json:"doctorName"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	Location   string `json:"location,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// TreatmentSummary is a short treatment card on the patient dashboard
type TreatmentSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Stage       string `json:"stage"`
	Snippet     string `json:"snippet"`
}

// Treatment is a full treatment plan entry
type Treatment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Stage       string `json:"stage"`
	LastUpdated string `json:"lastUpdated,omitempty"`
	Summary     string `json:"summary"`
	Details     string `json:"details,omitempty"`
}

// Payment is an invoice line on the patient dashboard
type Payment struct {
	ID          string  `json:"id"`
	Date        string  `json:"date,omitempty"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	Status      string  `json:"status"`
}

// PatientDashboard is the payload of GET /api/patient/dashboard
type PatientDashboard struct {
	UpcomingAppointments []PatientAppointment `json:"upcomingAppointments"`
	TreatmentSummaries   []TreatmentSummary   `json:"treatmentSummaries"`
	Payments             []Payment            `json:"payments"`
}

// Notification is an in-app notification
type Notification struct {
	ID          int64  `json:"id"`
	Channel     string `json:"channel,omitempty"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

// LoginResponse is the payload of POST /api/auth/login
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	UID   string `json:"uid"`
	Name  string `json:"name"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	UserType string `json:"userType"`
}
