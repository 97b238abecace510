package commands

import (
	"testing"
	"time"
)

func TestParseBanditStart(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantHH int
		wantMM int
		wantOK bool
	}{
		{name: "plain time", input: "17:40", wantHH: 17, wantMM: 40, wantOK: true},
		{name: "single digit hour", input: "7:05", wantHH: 7, wantMM: 5, wantOK: true},
		{name: "midnight", input: "0:00", wantHH: 0, wantMM: 0, wantOK: true},
		{name: "last minute of the day", input: "23:59", wantHH: 23, wantMM: 59, wantOK: true},
		{name: "hour out of range", input: "24:00", wantOK: false},
		{name: "minute out of range", input: "12:60", wantOK: false},
		{name: "missing minute digit", input: "7:5", wantOK: false},
		{name: "not a time", input: "soon", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hh, mm, ok := parseBanditStart(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseBanditStart(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && (hh != tt.wantHH || mm != tt.wantMM) {
				t.Errorf("parseBanditStart(%q) = %d:%d, want %d:%d", tt.input, hh, mm, tt.wantHH, tt.wantMM)
			}
		})
	}
}

func TestLastOccurrence(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)

	t.Run("earlier today", func(t *testing.T) {
		got := lastOccurrence(now, 12, 30)
		want := time.Date(2024, time.March, 10, 12, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("lastOccurrence = %v, want %v", got, want)
		}
	})

	t.Run("later time of day rolls back to yesterday", func(t *testing.T) {
		got := lastOccurrence(now, 20, 0)
		want := time.Date(2024, time.March, 9, 20, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("lastOccurrence = %v, want %v", got, want)
		}
	})

	t.Run("exactly now stays today", func(t *testing.T) {
		got := lastOccurrence(now, 15, 0)
		if !got.Equal(now) {
			t.Errorf("lastOccurrence = %v, want %v", got, now)
		}
	})
}

func TestBanditWindow(t *testing.T) {
	start := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	from, to := banditWindow(start)

	wantFrom := time.Date(2024, time.March, 10, 15, 15, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.March, 10, 17, 45, 0, 0, time.UTC)

	if !from.Equal(wantFrom) {
		t.Errorf("window opens at %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantTo) {
		t.Errorf("window closes at %v, want %v", to, wantTo)
	}
}
