package events

import (
	"testing"
	"time"
)

func TestTransactionSyncMessageRoundTrip(t *testing.T) {
	msg := NewTransactionSyncMessage("t1", 3)
	if msg.ID != "t1" || msg.Version != 3 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Fatalf("timestamp not set: %v", msg.Timestamp)
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := TransactionSyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "t1" || got.Version != 3 {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestTransactionDeleteMessageRoundTrip(t *testing.T) {
	msg := NewTransactionDeleteMessage("t2")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := TransactionDeleteMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "t2" {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestMalformedMessages(t *testing.T) {
	if _, err := TransactionSyncMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed sync message")
	}
	if _, err := TransactionDeleteMessageFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for malformed delete message")
	}
}
