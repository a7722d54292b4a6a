package sandbox

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// Scheduling rules of the sandbox clinic
const (
	SlotMinutes    = 30
	DayStart       = 9 * 60
	DayEnd         = 18 * 60
	MaxSuggestions = 20
	// SearchDays bounds how far ahead free slots are looked for
	SearchDays = 14
)

const dateLayout = "2006-01-02"

// parseClock converts "HH:MM" to minutes after midnight
func parseClock(raw string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	// tolerate a seconds suffix
	if len(m) > 2 {
		m = m[:2]
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func overlaps(a, b int) bool {
	return a < b+SlotMinutes && b < a+SlotMinutes
}

// occupied lists the start minutes a doctor has taken on a date; cancelled visits free their slot
func (s *Store) occupied(doctorUID, date string) []int {
	var out []int
	for _, a := range s.appointments {
		if a.DoctorUID != doctorUID || a.Date != date {
			continue
		}
		if strings.EqualFold(a.Status, "CANCELLED") {
			continue
		}
		out = append(out, a.Start)
	}
	return out
}

func (s *Store) isFree(doctorUID, date string, start int) bool {
	for _, taken := range s.occupied(doctorUID, date) {
		if overlaps(start, taken) {
			return false
		}
	}
	return true
}

// suggestSlots walks the working day grid from the requested date forward and
// returns up to MaxSuggestions free slots. Slots already in the past are skipped.
func (s *Store) suggestSlots(doctorUID string, from time.Time) []model.SuggestedSlot {
	now := s.now().In(s.loc)
	var out []model.SuggestedSlot
	for day := 0; day < SearchDays && len(out) < MaxSuggestions; day++ {
		d := from.AddDate(0, 0, day)
		date := d.Format(dateLayout)
		for start := DayStart; start+SlotMinutes <= DayEnd; start += SlotMinutes {
			at := time.Date(d.Year(), d.Month(), d.Day(), start/60, start%60, 0, 0, s.loc)
			if at.Before(now) {
				continue
			}
			if !s.isFree(doctorUID, date, start) {
				continue
			}
			out = append(out, model.SuggestedSlot{
				Date:                 date,
				StartTime:            formatClock(start),
				EndTime:              formatClock(start + SlotMinutes),
				PredictedDurationMin: SlotMinutes,
			})
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

func appointmentUID(id int64) string {
	return "APT-" + strconv.FormatInt(id, 10)
}

func caseUID(id int64) string {
	return fmt.Sprintf("CASE-%03d", id)
}
