package status

import "strings"

// Appointment display labels
const (
	LabelPending    = "Pending"
	LabelConfirmed  = "Confirmed"
	LabelCheckedIn  = "Checked in"
	LabelInProgress = "In progress"
	LabelScheduled  = "Scheduled"
	LabelRequested  = "Requested"
	LabelCompleted  = "Completed"
	LabelCancelled  = "Cancelled"
)

// Appointment status codes as the backend spells them
const (
	CodePending   = "PENDING"
	CodeCompleted = "COMPLETED"
)

var appointmentLabels = map[string]string{
	"":            LabelPending,
	"PENDING":     LabelPending,
	"CONFIRMED":   LabelConfirmed,
	"CHECKED IN":  LabelCheckedIn,
	"IN PROGRESS": LabelInProgress,
	"SCHEDULED":   LabelScheduled,
	"REQUESTED":   LabelRequested,
	"COMPLETED":   LabelCompleted,
	"CANCELLED":   LabelCancelled,
	"CANCELED":    LabelCancelled,
}

var appointmentTones = map[string]Tone{
	LabelPending:    ToneWarning,
	LabelRequested:  ToneWarning,
	LabelConfirmed:  ToneSuccess,
	LabelCheckedIn:  ToneInfo,
	LabelInProgress: ToneInfo,
	LabelScheduled:  ToneInfo,
	LabelCompleted:  ToneNeutral,
	LabelCancelled:  ToneDanger,
}

// AppointmentCode canonicalizes a raw status: trimmed, upper-cased, with
// underscores and runs of spaces collapsed to single spaces.
func AppointmentCode(raw string) string {
	s := strings.ToUpper(strings.ReplaceAll(raw, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}

// AppointmentLabel maps a raw status to its display label. An empty status is Pending;
// unknown statuses are shown verbatim (trimmed).
func AppointmentLabel(raw string) string {
	if label, ok := appointmentLabels[AppointmentCode(raw)]; ok {
		return label
	}
	return strings.TrimSpace(raw)
}

// AppointmentTerminal reports whether the status is final
func AppointmentTerminal(raw string) bool {
	switch AppointmentLabel(raw) {
	case LabelCompleted, LabelCancelled:
		return true
	}
	return false
}

// AppointmentActionable reports whether the visit can still be marked completed.
// It is derived from the label so the two can never disagree.
func AppointmentActionable(raw string) bool {
	return !AppointmentTerminal(raw)
}

// AppointmentTone picks the badge style for a raw status
func AppointmentTone(raw string) Tone {
	if tone, ok := appointmentTones[AppointmentLabel(raw)]; ok {
		return tone
	}
	return ToneMuted
}

// AppointmentCodeOrPending returns the canonical code, PENDING when blank
func AppointmentCodeOrPending(raw string) string {
	if code := AppointmentCode(raw); code != "" {
		return code
	}
	return CodePending
}
