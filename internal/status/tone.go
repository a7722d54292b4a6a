// Package status maps free-form backend status and stage strings onto display labels,
// actionability and badge tones. Every function is total: unknown input never panics.
package status

// Tone is the visual style of a badge
type Tone int

const (
	ToneMuted Tone = iota
	ToneSuccess
	ToneInfo
	ToneWarning
	ToneDanger
	ToneAccent
	ToneNeutral
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneInfo:
		return "info"
	case ToneWarning:
		return "warning"
	case ToneDanger:
		return "danger"
	case ToneAccent:
		return "accent"
	case ToneNeutral:
		return "neutral"
	}
	return "muted"
}
