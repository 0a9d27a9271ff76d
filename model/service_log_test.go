package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveFulfillmentStatus(t *testing.T) {
	programDate := date(2024, time.January, 10)

	tests := []struct {
		name string
		now  time.Time
		want FulfillmentStatus
	}{
		{"days before program", date(2024, time.January, 5), FulfillmentPending},
		{"day before program", date(2024, time.January, 9), FulfillmentPending},
		{"program day midnight", date(2024, time.January, 10), FulfillmentOngoing},
		{"program day evening", time.Date(2024, time.January, 10, 23, 59, 0, 0, time.UTC), FulfillmentOngoing},
		{"day after program", date(2024, time.January, 11), FulfillmentCompleted},
		{"days after program", date(2024, time.January, 15), FulfillmentCompleted},
		{"previous year", date(2023, time.December, 31), FulfillmentPending},
		{"next year", date(2025, time.January, 1), FulfillmentCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveFulfillmentStatus(programDate, tt.now)
			if got != tt.want {
				t.Errorf("DeriveFulfillmentStatus(%v, %v) = %q, want %q",
					programDate, tt.now, got, tt.want)
			}
		})
	}
}

func TestDeriveFulfillmentStatusIgnoresTimeOfDay(t *testing.T) {
	// A program stored with a nonzero time component still compares by
	// calendar day
	programDate := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	now := time.Date(2024, time.June, 1, 6, 0, 0, 0, time.UTC)

	if got := DeriveFulfillmentStatus(programDate, now); got != FulfillmentOngoing {
		t.Errorf("expected ongoing on the program day regardless of clock time, got %q", got)
	}
}
