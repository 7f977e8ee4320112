package schedule

import (
	"strconv"
	"strings"

	"github.com/lendbook/lendbook/pkg/models"
)

// defaultIntervalDays is used whenever an interval string cannot be
// understood. The engine degrades to a monthly cadence rather than fail.
const defaultIntervalDays = 30

// ParseIntervalToDays converts a human-entered cadence like "15 days" or
// "1 month" into a day count. A bare integer means days. Anything
// missing, non-positive or unrecognized yields the 30-day default; this
// function never fails.
func ParseIntervalToDays(interval string) int {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(interval)))
	if len(parts) == 0 {
		return defaultIntervalDays
	}

	value, err := strconv.Atoi(parts[0])
	if err != nil || value <= 0 {
		return defaultIntervalDays
	}

	unit := ""
	if len(parts) > 1 {
		unit = parts[1]
	}

	switch {
	case unit == "" || strings.HasPrefix(unit, "day"):
		return value
	case strings.HasPrefix(unit, "week"):
		return value * 7
	case strings.HasPrefix(unit, "month"):
		return value * 30
	case strings.HasPrefix(unit, "year"):
		return value * 365
	}
	return defaultIntervalDays
}

// IntervalForFrequency maps a coarse frequency to its default interval
// string, used when a loan has no explicit interval set.
func IntervalForFrequency(freq models.PaymentFrequency) string {
	switch freq {
	case models.FrequencyDaily:
		return "1 day"
	case models.FrequencyWeekly:
		return "1 week"
	case models.FrequencyBiMonthly:
		return "15 days"
	case models.FrequencyMonthly:
		return "1 month"
	}
	return "1 month"
}

// FrequencyForInterval derives the coarse frequency category from a
// free-text interval, for filtering and as a stored fallback. Precedence:
// week beats day, "1 day"/"daily" is the only phrase categorized daily,
// "15" or "bi" means bi-monthly, everything else is monthly.
func FrequencyForInterval(interval string) models.PaymentFrequency {
	lower := strings.ToLower(strings.TrimSpace(interval))
	if strings.Contains(lower, "week") {
		return models.FrequencyWeekly
	}
	if lower == "daily" || (strings.Contains(lower, "day") && strings.HasPrefix(lower, "1 ")) {
		return models.FrequencyDaily
	}
	if strings.Contains(lower, "15") || strings.Contains(lower, "bi") {
		return models.FrequencyBiMonthly
	}
	return models.FrequencyMonthly
}
