package model

import (
	"testing"
	"time"
)

func TestCurrentStatusNoDecisions(t *testing.T) {
	app := ProgramApplication{}

	if got := app.CurrentStatus(); got != DecisionPending {
		t.Errorf("empty decision history should be pending, got %q", got)
	}
	if app.IsDecided() {
		t.Error("application with no decisions should not be decided")
	}
}

func TestCurrentStatusLatestWins(t *testing.T) {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		decisions []ProgramDecision
		want      DecisionStatus
	}{
		{
			name: "single approval",
			decisions: []ProgramDecision{
				{Status: DecisionApproved, DecidedAt: base},
			},
			want: DecisionApproved,
		},
		{
			name: "single rejection",
			decisions: []ProgramDecision{
				{Status: DecisionRejected, DecidedAt: base},
			},
			want: DecisionRejected,
		},
		{
			name: "latest decision wins regardless of slice order",
			decisions: []ProgramDecision{
				{Status: DecisionApproved, DecidedAt: base.Add(2 * time.Hour)},
				{Status: DecisionRejected, DecidedAt: base},
			},
			want: DecisionApproved,
		},
		{
			name: "newer rejection overrides older approval",
			decisions: []ProgramDecision{
				{Status: DecisionApproved, DecidedAt: base},
				{Status: DecisionRejected, DecidedAt: base.Add(24 * time.Hour)},
			},
			want: DecisionRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := ProgramApplication{Decisions: tt.decisions}
			if got := app.CurrentStatus(); got != tt.want {
				t.Errorf("CurrentStatus() = %q, want %q", got, tt.want)
			}
			if !app.IsDecided() {
				t.Error("application with decisions should be decided")
			}
		})
	}
}

func TestProgramSlots(t *testing.T) {
	p := Program{Slots: 3, SlotsTaken: 2}
	if p.IsFull() {
		t.Error("program with a free seat should not be full")
	}
	if got := p.SlotsRemaining(); got != 1 {
		t.Errorf("SlotsRemaining() = %d, want 1", got)
	}

	p.SlotsTaken = 3
	if !p.IsFull() {
		t.Error("program with all seats taken should be full")
	}
	if got := p.SlotsRemaining(); got != 0 {
		t.Errorf("SlotsRemaining() = %d, want 0", got)
	}
}

func TestStudentProfileHoursRemaining(t *testing.T) {
	p := StudentProfile{TotalRequiredHours: 40, HoursCompleted: 12}
	if got := p.HoursRemaining(); got != 28 {
		t.Errorf("HoursRemaining() = %d, want 28", got)
	}

	// Over-fulfillment goes negative rather than clamping
	p.HoursCompleted = 48
	if got := p.HoursRemaining(); got != -8 {
		t.Errorf("HoursRemaining() = %d, want -8", got)
	}
}
