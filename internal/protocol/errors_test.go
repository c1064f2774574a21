package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrBusy,
		ErrBadRequest,
		ErrNoResource,
		ErrInvalidTarget,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_WORLD_BUSY") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestActMsg_Validate(t *testing.T) {
	lat, lng := 1.0, 2.0
	on := true
	ok := []ActMsg{
		{ID: "1", Action: ActMoveTo, Lat: &lat, Lng: &lng},
		{ID: "2", Action: ActStep, DI: -1},
		{ID: "3", Action: ActTracking, Tracking: &on},
		{ID: "4", Action: ActCollect, Cell: "0,0"},
		{ID: "5", Action: ActDeposit, Cell: "0,0"},
		{ID: "6", Action: ActReset},
		{ID: "7", Action: ActLocate, CoinID: "0:0:1"},
	}
	for _, a := range ok {
		if err := a.Validate(); err != nil {
			t.Fatalf("%s: unexpected error %v", a.Action, err)
		}
	}
	bad := []ActMsg{
		{Action: ActReset},
		{ID: "1", Action: ActMoveTo, Lat: &lat},
		{ID: "2", Action: ActStep},
		{ID: "3", Action: ActTracking},
		{ID: "4", Action: ActCollect},
		{ID: "5", Action: ActLocate},
		{ID: "6", Action: "DIG"},
	}
	for _, a := range bad {
		if err := a.Validate(); err == nil {
			t.Fatalf("expected error for %+v", a)
		}
	}
}
