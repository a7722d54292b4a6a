// Package sandbox is an in-memory stand-in for the clinic REST backend, used for
// local development and end-to-end tests of the console.
package sandbox

import (
	"sync"
	"time"

	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// user is a login identity
type user struct {
	UID      string
	Email    string
	Password string
	Name     string
	Phone    string
	Role     model.Role
}

// appointment is a booked visit; Start is minutes after midnight
type appointment struct {
	DBID       int64
	UID        string
	PatientUID string
	DoctorUID  string
	Date       string
	Start      int
	Type       string
	Status     string
	Room       string
	Notes      string
}

// clinicalCase is a case on the pipeline
type clinicalCase struct {
	ID                  int64
	UID                 string
	PatientUID          string
	PatientName         string
	DoctorUID           string
	Type                string
	ToothRegion         string
	Diagnosis           string
	Stage               model.CaseStage
	Priority            model.CasePriority
	RiskScore           float64
	NextAction          string
	NextReviewDate      string
	AgentSummary        string
	AgentRecommendation string
	Flagged             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// stockItem is an inventory line keyed by its item code
type stockItem struct {
	Code      string
	Name      string
	Category  string
	Stock     int
	Threshold int
	Expiry    *string
}

// payment is an invoice line
type payment struct {
	ID          string
	PatientUID  string
	Date        string
	Description string
	Amount      float64
	Currency    string
	Status      string
}

// notification is an in-app message for one user
type notification struct {
	ID        int64
	UserUID   string
	Channel   string
	Type      string
	Title     string
	Message   string
	Status    string
	CreatedAt time.Time
}

// Store holds the sandbox data behind a single lock
type Store struct {
	mu sync.RWMutex

	users         []user
	appointments  []*appointment
	cases         []*clinicalCase
	inventory     []*stockItem
	payments      []payment
	notifications []*notification

	nextAppointment  int64
	nextCase         int64
	nextNotification int64

	now func() time.Time
	loc *time.Location
}

// NewStore creates an empty store. A nil location means time.Local.
func NewStore(now func() time.Time, loc *time.Location) *Store {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		nextAppointment:  1000,
		nextCase:         100,
		nextNotification: 1,
		now:              now,
		loc:              loc,
	}
}

// NewSeededStore creates a store filled with demo data around today's date
func NewSeededStore(now func() time.Time, loc *time.Location) *Store {
	s := NewStore(now, loc)
	seed(s)
	return s
}

func (s *Store) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Store) todayString() string {
	return s.today().Format(dateLayout)
}

func (s *Store) userByUID(uid string) (user, bool) {
	for _, u := range s.users {
		if u.UID == uid {
			return u, true
		}
	}
	return user{}, false
}

func (s *Store) nameOf(uid string) string {
	if u, ok := s.userByUID(uid); ok {
		return u.Name
	}
	return ""
}

func (s *Store) usersWithRole(role model.Role) []user {
	var out []user
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (s *Store) addAppointment(a appointment) *appointment {
	s.nextAppointment++
	a.DBID = s.nextAppointment
	if a.UID == "" {
		a.UID = appointmentUID(a.DBID)
	}
	p := &a
	s.appointments = append(s.appointments, p)
	return p
}

func (s *Store) addCase(c clinicalCase) *clinicalCase {
	s.nextCase++
	c.ID = s.nextCase
	if c.UID == "" {
		c.UID = caseUID(c.ID)
	}
	p := &c
	s.cases = append(s.cases, p)
	return p
}

func (s *Store) notify(userUID, kind, title, message string) *notification {
	n := &notification{
		ID:        s.nextNotification,
		UserUID:   userUID,
		Channel:   "IN_APP",
		Type:      kind,
		Title:     title,
		Message:   message,
		Status:    "SENT",
		CreatedAt: s.now(),
	}
	s.nextNotification++
	s.notifications = append(s.notifications, n)
	return n
}
