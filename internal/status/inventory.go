package status

import (
	"math"
	"strings"

	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// ComputeInventoryStatus derives the stock label from stock and reorder threshold.
// Without a threshold an item is Healthy; at or below it, Low; up to 1.5x the
// threshold rounded up, Reorder soon.
func ComputeInventoryStatus(stock int, threshold *int) string {
	if threshold == nil {
		return model.InventoryHealthy
	}
	t := *threshold
	if stock <= t {
		return model.InventoryLow
	}
	if float64(stock) <= math.Ceil(float64(t)*1.5) {
		return model.InventoryReorderSoon
	}
	return model.InventoryHealthy
}

// InventoryStatus prefers a non-blank server status and computes one otherwise
func InventoryStatus(server string, stock int, threshold *int) string {
	if s := strings.TrimSpace(server); s != "" {
		return s
	}
	return ComputeInventoryStatus(stock, threshold)
}

// InventoryTone picks the badge style of a stock label
func InventoryTone(label string) Tone {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return ToneDanger
	case "reorder soon":
		return ToneWarning
	case "healthy":
		return ToneSuccess
	}
	return ToneMuted
}

// IsLowStock reports whether a stock label counts towards the low-stock aggregate
func IsLowStock(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), model.InventoryLow)
}

// PaymentPaid reports whether a payment status is settled
func PaymentPaid(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "PAID")
}

// NotificationUnread reports whether a notification still needs attention
func NotificationUnread(raw string) bool {
	return !strings.EqualFold(strings.TrimSpace(raw), "READ")
}
