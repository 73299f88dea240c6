package domain

import "testing"

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state SessionState
		event Event
		want  SessionState
	}{
		{"confirm", StateAwaitingPayment, EventConfirm, StateConfirmed},
		{"fail", StateAwaitingPayment, EventFail, StateFailed},
		{"exhaust", StateAwaitingPayment, EventExhaust, StateTimedOut},
		{"cancel", StateAwaitingPayment, EventCancel, StateCancelled},
		{"confirmed_absorbs_fail", StateConfirmed, EventFail, StateConfirmed},
		{"confirmed_absorbs_confirm", StateConfirmed, EventConfirm, StateConfirmed},
		{"cancelled_absorbs_confirm", StateCancelled, EventConfirm, StateCancelled},
		{"timed_out_absorbs_cancel", StateTimedOut, EventCancel, StateTimedOut},
		{"failed_absorbs_exhaust", StateFailed, EventExhaust, StateFailed},
		{"unknown_event_keeps_state", StateAwaitingPayment, Event("noop"), StateAwaitingPayment},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Transition(tt.state, tt.event); got != tt.want {
				t.Fatalf("Transition(%q, %q) = %q, want %q", tt.state, tt.event, got, tt.want)
			}
		})
	}
}

func TestTerminalStatesAbsorbEverySequence(t *testing.T) {
	t.Parallel()

	events := []Event{EventConfirm, EventFail, EventExhaust, EventCancel}
	for _, first := range events {
		state := Transition(StateAwaitingPayment, first)
		if !state.Terminal() {
			t.Fatalf("expected terminal state after %q, got %q", first, state)
		}
		for _, e := range events {
			if got := Transition(state, e); got != state {
				t.Fatalf("terminal %q moved to %q on %q", state, got, e)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  PaymentStatus
		want    Event
		matched bool
	}{
		{PaymentPaid, EventConfirm, true},
		{PaymentCompleted, EventConfirm, true},
		{PaymentFailed, EventFail, true},
		{PaymentCancelled, EventFail, true},
		{PaymentExpired, EventFail, true},
		{PaymentPending, "", false},
		{PaymentStatus("PROCESSING"), "", false},
		{PaymentStatus(""), "", false},
	}

	for _, tt := range tests {
		got, ok := Classify(tt.status)
		if ok != tt.matched || got != tt.want {
			t.Fatalf("Classify(%q) = (%q, %v), want (%q, %v)", tt.status, got, ok, tt.want, tt.matched)
		}
	}
}

func TestDeriveClientStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    SessionState
		attempts int
		want     ClientStatus
	}{
		{StateAwaitingPayment, 0, ClientPending},
		{StateAwaitingPayment, 3, ClientChecking},
		{StateConfirmed, 5, ClientConfirmed},
		{StateFailed, 2, ClientFailed},
		{StateTimedOut, 60, ClientFailed},
		{StateCancelled, 1, ClientFailed},
	}

	for _, tt := range tests {
		if got := DeriveClientStatus(tt.state, tt.attempts); got != tt.want {
			t.Fatalf("DeriveClientStatus(%q, %d) = %q, want %q", tt.state, tt.attempts, got, tt.want)
		}
	}
}
