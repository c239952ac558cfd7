package watchdog

import "testing"

func TestEdgeNot(t *testing.T) {
	if Rising.Not() != Falling {
		t.Error("expected !RISING == FALLING")
	}
	if Falling.Not() != Rising {
		t.Error("expected !FALLING == RISING")
	}
}

func TestEdgeFromByte(t *testing.T) {
	tests := []struct {
		b    byte
		want Edge
	}{
		{'+', Rising},
		{1, Rising},
		{'.', Falling},
		{0, Falling},
		{0xff, Falling},
	}
	for _, tt := range tests {
		if got := EdgeFromByte(tt.b); got != tt.want {
			t.Errorf("EdgeFromByte(%#x): got %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestStateBoolRoundTrip(t *testing.T) {
	if StateFromBool(StateOk.Bool()) != StateOk {
		t.Error("OK did not round-trip through bool")
	}
	if StateFromBool(StateFault.Bool()) != StateFault {
		t.Error("FAULT did not round-trip through bool")
	}
}

func TestStateEventString(t *testing.T) {
	tests := []struct {
		event StateEvent
		want  string
	}{
		{OkEvent(), "OK"},
		{FaultEvent(FaultInitial), "FAULT(INITIAL)"},
		{FaultEvent(FaultTimeout), "FAULT(TIMEOUT)"},
		{FaultEvent(FaultWindow), "FAULT(WINDOW)"},
		{FaultEvent(FaultOutOfOrder), "FAULT(OUT_OF_ORDER)"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
