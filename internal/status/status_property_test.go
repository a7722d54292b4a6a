package status

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// rawStatusGen mixes known statuses in odd spellings with arbitrary strings
func rawStatusGen() gopter.Gen {
	return gen.OneGenOf(
		gen.OneConstOf("", " ", "pending", "Confirmed", "CHECKED_IN", "checked  in", "In Progress",
			"scheduled", "REQUESTED", "completed", " Cancelled ", "CANCELED", "No show", "done"),
		gen.AnyString(),
		gen.AlphaString(),
	)
}

func TestAppointmentStatusProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Label is idempotent", prop.ForAll(
		func(raw string) bool {
			label := AppointmentLabel(raw)
			return AppointmentLabel(label) == label
		},
		rawStatusGen(),
	))

	properties.Property("Actionability agrees for a raw status and its label", prop.ForAll(
		func(raw string) bool {
			return AppointmentActionable(raw) == AppointmentActionable(AppointmentLabel(raw))
		},
		rawStatusGen(),
	))

	properties.Property("Terminal labels are never actionable", prop.ForAll(
		func(raw string) bool {
			label := AppointmentLabel(raw)
			if label == LabelCompleted || label == LabelCancelled {
				return !AppointmentActionable(raw)
			}
			return AppointmentActionable(raw)
		},
		rawStatusGen(),
	))

	properties.TestingRun(t)
}

func TestComputeInventoryStatusProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Status follows the three-tier rule", prop.ForAll(
		func(stock, threshold int) bool {
			got := ComputeInventoryStatus(stock, &threshold)
			// ceil(1.5t) for non-negative t
			reorderCeil := threshold + (threshold+1)/2
			switch {
			case stock <= threshold:
				return got == model.InventoryLow
			case stock <= reorderCeil:
				return got == model.InventoryReorderSoon
			default:
				return got == model.InventoryHealthy
			}
		},
		gen.IntRange(0, 5000),
		gen.IntRange(0, 1000),
	))

	properties.Property("Status is a pure function of its inputs", prop.ForAll(
		func(stock, threshold int) bool {
			a := ComputeInventoryStatus(stock, &threshold)
			b := ComputeInventoryStatus(stock, &threshold)
			return a == b
		},
		gen.IntRange(-100, 5000),
		gen.IntRange(-100, 1000),
	))

	properties.Property("No threshold is always healthy", prop.ForAll(
		func(stock int) bool {
			return ComputeInventoryStatus(stock, nil) == model.InventoryHealthy
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

func TestStageProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("NormalizeStage always lands in the closed set", prop.ForAll(
		func(raw string) bool {
			stage := NormalizeStage(raw)
			for _, s := range model.AllStages {
				if s == stage {
					return true
				}
			}
			return false
		},
		gen.OneGenOf(gen.OneConstOf("new", "IN_TREATMENT", "ready to close", "blocked", "x"), gen.AnyString()),
	))

	properties.Property("Doctor labels round-trip through the stored stage", prop.ForAll(
		func(raw string) bool {
			label := DoctorStageLabel(raw)
			return DoctorStageLabel(string(DoctorStageToDB(label))) == label
		},
		gen.OneGenOf(gen.OneConstOf("CLOSED", "completed", "IN_TREATMENT", "WAITING_ON_PATIENT", ""), gen.AnyString()),
	))

	properties.Property("Risk tiers are monotonic", prop.ForAll(
		func(a, b float64) bool {
			rank := map[RiskTier]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
			if a > b {
				a, b = b, a
			}
			return rank[RiskTierOf(a)] <= rank[RiskTierOf(b)]
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
