package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"5200", 520000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{520000, "R$ 5.200,00"},
		{155000, "R$ 1.550,00"},
		{365000, "R$ 3.650,00"},
		{1, "R$ 0,01"},
		{100, "R$ 1,00"},
		{123456789, "R$ 1.234.567,89"},
		{-35000, "-R$ 350,00"},
		{0, "R$ 0,00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).FormatBRL(); got != tc.out {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.out, got)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Money{Cents: 520050})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "5200.50" {
		t.Fatalf("expected 5200.50, got %s", data)
	}

	var m Money
	if err := json.Unmarshal([]byte("5200.50"), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 520050 {
		t.Fatalf("expected 520050 cents, got %d", m.Cents)
	}

	// The remote store sometimes sends numeric columns as strings.
	if err := json.Unmarshal([]byte(`"12.34"`), &m); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 1234 {
		t.Fatalf("expected 1234 cents, got %d", m.Cents)
	}

	if err := json.Unmarshal([]byte("null"), &m); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if m.Cents != 0 {
		t.Fatalf("expected 0 cents for null, got %d", m.Cents)
	}
}

func TestMoneyReais(t *testing.T) {
	if got := (Money{Cents: 123456}).Reais(); got != 1234.56 {
		t.Fatalf("expected 1234.56, got %v", got)
	}
}
