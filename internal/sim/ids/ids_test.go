package ids

import "testing"

func TestCoinIDRoundTrip(t *testing.T) {
	id := CoinID(12, -9, 3)
	if id != "12:-9:3" {
		t.Fatalf("CoinID=%q", id)
	}
	i, j, seq, ok := ParseCoinID(id)
	if !ok {
		t.Fatalf("ParseCoinID failed for %q", id)
	}
	if i != 12 || j != -9 || seq != 3 {
		t.Fatalf("unexpected parse result: i=%d j=%d seq=%d", i, j, seq)
	}
}

func TestParseCoinIDRejectsInvalid(t *testing.T) {
	tests := []string{
		"",
		"1:2",
		"1:2:x",
		"1:2:3:4",
		"1:2:-1",
	}
	for _, tc := range tests {
		if _, _, _, ok := ParseCoinID(tc); ok {
			t.Fatalf("expected parse failure for %q", tc)
		}
	}
}

func TestCellKeyRoundTrip(t *testing.T) {
	key := CellKey(-3, 7)
	if key != "-3,7" {
		t.Fatalf("CellKey=%q", key)
	}
	i, j, ok := ParseCellKey(" -3, 7 ")
	if !ok || i != -3 || j != 7 {
		t.Fatalf("ParseCellKey: i=%d j=%d ok=%v", i, j, ok)
	}
	if _, _, ok := ParseCellKey("3"); ok {
		t.Fatalf("expected failure for single component")
	}
}
