package taxlot

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestEncodeDecodeHistory_RoundTrip(t *testing.T) {
	history := []Transaction{
		NewDeposit(on(2021, time.January, 1), "L-1", ada(100), none("ADA")),
		NewTrade(on(2021, time.February, 1), "L-2", ada(100), atom(50), ada(0.5)),
		NewWithdrawal(on(2021, time.March, 1), "L-3", atom(10), atom(0.01)),
		NewStaking(on(2021, time.April, 1), "L-4", atom(2), none("ATOM")),
	}

	var buf bytes.Buffer
	if err := EncodeHistory(&buf, history); err != nil {
		t.Fatalf("EncodeHistory() error = %v", err)
	}

	decoded, err := DecodeHistory(&buf)
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	if len(decoded) != len(history) {
		t.Fatalf("DecodeHistory() = %d transactions, want %d", len(decoded), len(history))
	}
	for i := range history {
		if !decoded[i].Equal(history[i]) {
			t.Errorf("transaction %d = %+v, want %+v", i, decoded[i], history[i])
		}
	}
}

func TestDecodeHistory_SortsByDate(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeHistory(&buf, []Transaction{
		NewDeposit(on(2021, time.March, 1), "late", ada(1), none("ADA")),
		NewDeposit(on(2021, time.January, 1), "early", ada(1), none("ADA")),
	}); err != nil {
		t.Fatalf("EncodeHistory() error = %v", err)
	}

	decoded, err := DecodeHistory(&buf)
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	if decoded[0].ID != "early" || decoded[1].ID != "late" {
		t.Errorf("DecodeHistory() order = %s, %s; want early, late", decoded[0].ID, decoded[1].ID)
	}
}

func TestDecodeHistory_RejectsUnknownKind(t *testing.T) {
	in := strings.NewReader(`{"kind":"airdrop","date":"2021-01-01T12:00:00Z","destination":{"amount":1,"currency":"ADA"}}`)
	if _, err := DecodeHistory(in); err == nil {
		t.Fatal("DecodeHistory() should reject an unknown kind")
	}
}

func TestDecodeHistory_SkipsEmptyLines(t *testing.T) {
	in := strings.NewReader(`{"kind":"deposit","date":"2021-01-01T12:00:00Z","destination":{"amount":1,"currency":"ADA"}}` + "\n\n")
	decoded, err := DecodeHistory(in)
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Errorf("DecodeHistory() = %d transactions, want 1", len(decoded))
	}
}
