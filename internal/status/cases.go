package status

import (
	"strings"

	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// HighRiskThreshold is the risk score at which the high-risk filter includes a case
const HighRiskThreshold = 70.0

// RiskTier is the badge bucket of a risk score
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

var stageLabels = map[model.CaseStage]string{
	model.StageNew:              "New",
	model.StageInTreatment:      "In treatment",
	model.StageWaitingOnPatient: "Waiting on patient",
	model.StageReadyToClose:     "Ready to close",
	model.StageClosed:           "Closed",
	model.StageBlocked:          "Blocked",
}

var stageTones = map[model.CaseStage]Tone{
	model.StageNew:              ToneInfo,
	model.StageInTreatment:      ToneSuccess,
	model.StageWaitingOnPatient: ToneWarning,
	model.StageReadyToClose:     ToneAccent,
	model.StageClosed:           ToneNeutral,
	model.StageBlocked:          ToneDanger,
}

func stageCode(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// ParseStage maps a raw stage onto the closed stage set
func ParseStage(raw string) (model.CaseStage, bool) {
	stage := model.CaseStage(stageCode(raw))
	if _, ok := stageLabels[stage]; ok {
		return stage, true
	}
	return "", false
}

// NormalizeStage maps a raw stage onto the stage set; blank and unknown stages become NEW
func NormalizeStage(raw string) model.CaseStage {
	if stage, ok := ParseStage(raw); ok {
		return stage
	}
	return model.StageNew
}

// StageLabel returns the display label of a stage, or the stage itself when unknown
func StageLabel(stage model.CaseStage) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return string(stage)
}

// StageTone picks the badge style of a stage
func StageTone(stage model.CaseStage) Tone {
	if tone, ok := stageTones[stage]; ok {
		return tone
	}
	return ToneMuted
}

// DoctorStageLabel maps a stored stage onto the four labels of the doctor's case list
func DoctorStageLabel(raw string) string {
	switch stageCode(raw) {
	case "IN_TREATMENT":
		return model.DoctorStageInTreatment
	case "WAITING_ON_PATIENT":
		return model.DoctorStageWaitingOnPatient
	case "CLOSED", "COMPLETED":
		return model.DoctorStageCompleted
	}
	return model.DoctorStageNew
}

// DoctorStageToDB maps a doctor-facing label back to the stored stage
func DoctorStageToDB(label string) model.CaseStage {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case strings.ToLower(model.DoctorStageInTreatment):
		return model.StageInTreatment
	case strings.ToLower(model.DoctorStageWaitingOnPatient):
		return model.StageWaitingOnPatient
	case strings.ToLower(model.DoctorStageCompleted):
		return model.StageClosed
	}
	return model.StageNew
}

// DoctorStageLabels lists the doctor-facing labels in display order
func DoctorStageLabels() []string {
	return []string{
		model.DoctorStageNew,
		model.DoctorStageInTreatment,
		model.DoctorStageWaitingOnPatient,
		model.DoctorStageCompleted,
	}
}

// DoctorStageTone picks the badge style of a doctor-facing label
func DoctorStageTone(label string) Tone {
	switch label {
	case model.DoctorStageNew:
		return ToneInfo
	case model.DoctorStageInTreatment:
		return ToneSuccess
	case model.DoctorStageWaitingOnPatient:
		return ToneWarning
	case model.DoctorStageCompleted:
		return ToneNeutral
	}
	return ToneMuted
}

// CaseClosed reports whether a stored stage ends the case
func CaseClosed(raw string) bool {
	switch stageCode(raw) {
	case "CLOSED", "COMPLETED":
		return true
	}
	return false
}

// RiskTierOf buckets a 0-100 risk score: below 60 low, below 80 medium, else high
func RiskTierOf(score float64) RiskTier {
	switch {
	case score >= 80:
		return RiskHigh
	case score >= 60:
		return RiskMedium
	}
	return RiskLow
}

// RiskTone picks the badge style of a risk score
func RiskTone(score float64) Tone {
	switch RiskTierOf(score) {
	case RiskHigh:
		return ToneDanger
	case RiskMedium:
		return ToneWarning
	}
	return ToneSuccess
}

// IsHighRisk reports whether the high-risk filter keeps a case
func IsHighRisk(score float64) bool {
	return score >= HighRiskThreshold
}

// PriorityLabel returns the display label of a priority
func PriorityLabel(p model.CasePriority) string {
	switch model.CasePriority(strings.ToUpper(string(p))) {
	case model.PriorityHigh:
		return "High"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityLow:
		return "Low"
	}
	return string(p)
}

// PriorityTone picks the badge style of a priority
func PriorityTone(p model.CasePriority) Tone {
	switch model.CasePriority(strings.ToUpper(string(p))) {
	case model.PriorityHigh:
		return ToneDanger
	case model.PriorityMedium:
		return ToneWarning
	case model.PriorityLow:
		return ToneSuccess
	}
	return ToneMuted
}
