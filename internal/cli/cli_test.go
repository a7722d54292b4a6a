package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/config"
	"github.com/vcscsvcscs/dental-console/internal/middleware"
	"github.com/vcscsvcscs/dental-console/internal/sandbox"
	"github.com/vcscsvcscs/dental-console/internal/session"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)

type harness struct {
	app *App
	out *bytes.Buffer
	in  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := sandbox.NewSeededStore(func() time.Time { return testNow }, time.UTC)
	issuer, err := middleware.NewTokenIssuer([]byte("cli-test-key"), "sandbox", time.Hour)
	require.NoError(t, err)
	server := httptest.NewServer(sandbox.NewServer(store, issuer, logger).Router(nil))
	t.Cleanup(server.Close)

	sessions := session.NewProvider(session.NewMemoryStorage(), nil, logger)
	require.NoError(t, sessions.Init())
	client, err := apiclient.NewClient(server.URL, sessions, logger)
	require.NoError(t, err)

	cfg := &config.Config{API: config.APIConfig{BaseURL: server.URL, TrackingLimit: 50}}
	h := &harness{out: &bytes.Buffer{}, in: &bytes.Buffer{}}
	h.app = newApp(cfg, logger, sessions, client, h.out, h.in)
	h.app.Deps.Now = func() time.Time { return testNow }
	h.app.Deps.Location = time.UTC
	noColor := false
	h.app.Color = &noColor
	return h
}

// run executes one command line and returns its exit code and output
func (h *harness) run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	h.out.Reset()
	var errOut bytes.Buffer
	c := &cli{out: h.out, errOut: &errOut, in: h.in, app: h.app}
	code := c.execute(context.Background(), args)
	return code, h.out.String() + errOut.String()
}

func (h *harness) login(t *testing.T, role, email string) {
	t.Helper()
	code, out := h.run(t, "login", "--role", role, "--email", email, "--password", sandbox.DemoPassword, "--force")
	require.Equal(t, 0, code, out)
}

func TestScreensRequireSession(t *testing.T) {
	h := newHarness(t)

	code, out := h.run(t, "admin", "appointments")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, MsgNotSignedIn)
	assert.NotContains(t, out, "Error:")
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)

	code, out := h.run(t, "login", "--role", "admin", "--email", sandbox.DemoAdminEmail, "--password", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Invalid email or password.")

	h.login(t, "admin", sandbox.DemoAdminEmail)

	code, out = h.run(t, "login", "--role", "admin", "--email", sandbox.DemoAdminEmail, "--password", sandbox.DemoPassword)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Already signed in as Front Desk (ADMIN)")

	code, out = h.run(t, "whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Front Desk")
	assert.Contains(t, out, "ADMIN")

	code, out = h.run(t, "logout")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Signed out.")
	_, ok := h.app.Sessions.Current()
	assert.False(t, ok)
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	h := newHarness(t)
	h.in.WriteString("patient\n" + sandbox.DemoPatientEmail + "\n" + sandbox.DemoPassword + "\n")

	code, out := h.run(t, "login")
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "Signed in as Asha Verma (PATIENT).")
}

func TestWrongRoleReadsAsPermission(t *testing.T) {
	h := newHarness(t)
	h.login(t, "doctor", sandbox.DemoDoctorEmail)

	code, out := h.run(t, "admin", "inventory")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, apiclient.ForbiddenMessage)
}

func TestAdminScreens(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)

	code, out := h.run(t, "admin", "appointments")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Appointments 2025-01-10")
	assert.Contains(t, out, "Meera Iyer")

	code, out = h.run(t, "admin", "appointments", "--search", "zzz-no-match")
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "No appointments found.")

	code, out = h.run(t, "admin", "inventory", "--category", "ALL")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "GLOVE-M")
	assert.Contains(t, out, "Low stock: 1")

	code, out = h.run(t, "admin", "tracking", "--high-risk")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Summary")

	code, out = h.run(t, "admin", "tracking", "--stage", "NOT_A_STAGE")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown stage")

	for _, args := range [][]string{
		{"admin", "cases"},
		{"admin", "patients"},
		{"admin", "dashboard"},
		{"admin", "revenue"},
	} {
		code, out = h.run(t, args...)
		assert.Equal(t, 0, code, "%v: %s", args, out)
	}
}

func TestAdminCreateAppointment_ConflictPick(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)

	code, out := h.run(t, "admin", "appointments", "create",
		"--patient", "Meera", "--doctor", "DR-1", "--date", "2025-01-10", "--time", "09:00")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, sandbox.MsgSlotTaken)
	assert.Contains(t, out, "Suggested slots:")
	assert.Contains(t, out, "  1. 09:30")
	assert.Contains(t, out, "  8. ")
	assert.NotContains(t, out, "  9. ")

	code, out = h.run(t, "admin", "appointments", "create",
		"--patient", "PT-3", "--doctor", "DR-1", "--date", "2025-01-10", "--time", "09:00", "--pick", "1")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Retrying with 09:30")
	assert.Contains(t, out, "Appointment created.")
}

func TestAdminCreateAppointment_InteractivePick(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)
	h.in.WriteString("2\n")

	code, out := h.run(t, "admin", "appointments", "create", "-i",
		"--patient", "PT-3", "--doctor", "DR-1", "--date", "2025-01-10", "--time", "10:00")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Pick a slot [1-8]")
	assert.Contains(t, out, "Appointment created.")
}

func TestAdminCreateAppointment_Validation(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)

	code, out := h.run(t, "admin", "appointments", "create", "--doctor", "DR-1", "--time", "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Date and time are required.")

	code, out = h.run(t, "admin", "appointments", "create", "--patient", "nobody-at-all", "--doctor", "DR-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, `no patient matches "nobody-at-all"`)
}

func TestAdminTrackingStage(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)

	code, out := h.run(t, "admin", "tracking", "stage", "101", "ready_to_close")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Case 101 moved to")

	code, out = h.run(t, "admin", "tracking", "stage", "999", "CLOSED")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestAdminInventoryCreate(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)

	code, out := h.run(t, "admin", "inventory", "create", "--code", "BUR-01", "--name", "Diamond bur", "--stock", "3", "--threshold", "5")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Item created.")
	assert.Contains(t, out, "BUR-01")

	code, out = h.run(t, "admin", "inventory", "create", "--code", "bur-01", "--name", "Duplicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "already exists")

	code, out = h.run(t, "admin", "inventory", "create", "--name", "No code")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Item Code is required")
}

func TestAdminReport(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin", sandbox.DemoAdminEmail)
	path := filepath.Join(t.TempDir(), "report.pdf")

	code, out := h.run(t, "admin", "report", "--out", path)
	require.Equal(t, 0, code, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestDoctorCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t, "doctor", sandbox.DemoDoctorEmail)

	code, out := h.run(t, "doctor", "appointments")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "2 of 2 still open.")

	code, out = h.run(t, "doctor", "complete", "APT-1004")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Appointment APT-1004 marked completed.")

	code, out = h.run(t, "doctor", "complete", "APT-1004")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "cannot be marked completed")

	code, out = h.run(t, "doctor", "complete", "APT-9999")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not on today's schedule")

	code, out = h.run(t, "doctor", "cases", "create", "--patient", "Asha Verma", "--diagnosis", "Fractured cusp", "--tooth", "26")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Case created.")
	assert.Contains(t, out, "Fractured cusp")

	code, out = h.run(t, "doctor", "cases", "create", "--patient", "Asha Verma")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Patient name and diagnosis are required.")

	code, out = h.run(t, "doctor", "cases", "--stage", "nonsense")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown stage")

	for _, args := range [][]string{{"doctor", "patients"}, {"doctor", "dashboard"}} {
		code, out = h.run(t, args...)
		assert.Equal(t, 0, code, "%v: %s", args, out)
	}
}

func TestPatientCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t, "patient", sandbox.DemoPatientEmail)

	code, out := h.run(t, "patient", "home")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Upcoming appointments")

	code, out = h.run(t, "patient", "billing")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Total due")

	code, out = h.run(t, "patient", "appointments")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "2 upcoming.")

	code, out = h.run(t, "patient", "treatments", "--toggle", "2")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "- 1.")
	assert.Contains(t, out, "- 2.")

	code, out = h.run(t, "patient", "treatments", "--toggle", "9")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "no treatment at position 9")
}

func TestNotificationCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t, "patient", sandbox.DemoPatientEmail)

	code, out := h.run(t, "notifications")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "(1 unread)")

	code, out = h.run(t, "notifications", "read", "4")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Notification 4 marked read.")

	code, out = h.run(t, "notifications", "read", "1")
	assert.Equal(t, 1, code)

	code, out = h.run(t, "notifications", "read-all")
	require.Equal(t, 0, code, out)

	code, out = h.run(t, "inbox", "--tab", "unread")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "No notifications.")

	code, out = h.run(t, "notifications", "--tab", "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown tab")
}

func TestPrefs(t *testing.T) {
	h := newHarness(t)

	code, out := h.run(t, "prefs", "--theme", "dark", "--sidebar", "false")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "dark")
	assert.Contains(t, out, "false")

	code, out = h.run(t, "prefs", "--theme", "sepia")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "unknown theme")
}
