package person

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "new -> scheduled", from: StatusNew, to: StatusScheduled, want: true},
		{name: "new -> archived", from: StatusNew, to: StatusArchived, want: true},
		{name: "new -> completed", from: StatusNew, to: StatusCompleted},
		{name: "new -> new", from: StatusNew, to: StatusNew},
		{name: "scheduled -> connected", from: StatusScheduled, to: StatusConnected, want: true},
		{name: "scheduled -> no response", from: StatusScheduled, to: StatusNoResponse, want: true},
		{name: "scheduled -> completed", from: StatusScheduled, to: StatusCompleted},
		{name: "connected -> scheduled", from: StatusConnected, to: StatusScheduled, want: true},
		{name: "connected -> completed", from: StatusConnected, to: StatusCompleted, want: true},
		{name: "connected -> new", from: StatusConnected, to: StatusNew},
		{name: "no response -> scheduled", from: StatusNoResponse, to: StatusScheduled, want: true},
		{name: "no response -> completed", from: StatusNoResponse, to: StatusCompleted},
		{name: "completed -> archived", from: StatusCompleted, to: StatusArchived, want: true},
		{name: "completed -> scheduled", from: StatusCompleted, to: StatusScheduled},
		{name: "archived -> new (restore)", from: StatusArchived, to: StatusNew, want: true},
		{name: "archived -> scheduled", from: StatusArchived, to: StatusScheduled},
		{name: "unknown status", from: Status("LOL"), to: StatusNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusAfterCheckin(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		nextSet bool
		want    Status
	}{
		{name: "connected", outcome: OutcomeConnected, want: StatusConnected},
		{name: "connected with next follow-up", outcome: OutcomeConnected, nextSet: true, want: StatusScheduled},
		{name: "no response", outcome: OutcomeNoResponse, want: StatusNoResponse},
		{name: "no response with next follow-up", outcome: OutcomeNoResponse, nextSet: true, want: StatusScheduled},
		{name: "left message", outcome: OutcomeLeftMessage, want: StatusNoResponse},
		{name: "left message with next follow-up", outcome: OutcomeLeftMessage, nextSet: true, want: StatusScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusAfterCheckin(tt.outcome, tt.nextSet); got != tt.want {
				t.Errorf("StatusAfterCheckin(%s, %v) = %s, want %s", tt.outcome, tt.nextSet, got, tt.want)
			}
		})
	}
}
