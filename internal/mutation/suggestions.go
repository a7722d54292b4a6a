package mutation

import (
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// MaxSuggestions is how many suggested slots are offered at once
const MaxSuggestions = 8

// Suggestions holds the alternatives from the last slot conflict. The full list is kept;
// only the first MaxSuggestions are offered.
type Suggestions struct {
	all []model.SuggestedSlot
}

// NewSuggestions wraps the slots returned with a conflict
func NewSuggestions(slots []model.SuggestedSlot) Suggestions {
	return Suggestions{all: append([]model.SuggestedSlot(nil), slots...)}
}

// Visible returns the offered slots
func (s Suggestions) Visible() []model.SuggestedSlot {
	if len(s.all) > MaxSuggestions {
		return s.all[:MaxSuggestions]
	}
	return s.all
}

// Total is the number of slots the backend returned
func (s Suggestions) Total() int {
	return len(s.all)
}

// Empty reports whether nothing is offered
func (s Suggestions) Empty() bool {
	return len(s.all) == 0
}

// At returns the i-th offered slot
func (s Suggestions) At(i int) (model.SuggestedSlot, bool) {
	visible := s.Visible()
	if i < 0 || i >= len(visible) {
		return model.SuggestedSlot{}, false
	}
	return visible[i], true
}

// SlotLabel renders a slot as "HH:MM–HH:MM"
func SlotLabel(slot model.SuggestedSlot) string {
	return normalize.ClockHM(slot.StartTime) + "–" + normalize.ClockHM(slot.EndTime)
}

// Labels renders every offered slot
func (s Suggestions) Labels() []string {
	visible := s.Visible()
	labels := make([]string, len(visible))
	for i, slot := range visible {
		labels[i] = SlotLabel(slot)
	}
	return labels
}
