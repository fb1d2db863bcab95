package app

import (
	"testing"
	"time"

	"calendar-service/internal/event"
)

func TestGenerateDateSlots(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	slots := generateDateSlots("cal", from, to, event.StatusFree)
	if len(slots) != 7 {
		t.Fatalf("got %d slots, want 7", len(slots))
	}
	seen := make(map[string]bool)
	for i, s := range slots {
		if s.CalendarID != "cal" || s.Status != event.StatusFree {
			t.Errorf("slot %d: %+v", i, s)
		}
		day := s.Date.Format("2006-01-02")
		if seen[day] {
			t.Errorf("duplicate date %s", day)
		}
		seen[day] = true
		if s.ID == "" {
			t.Errorf("slot %d missing id", i)
		}
	}
}

func TestGenerateDateSlotsSingleDay(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	slots := generateDateSlots("cal", day, day, event.StatusUnassigned)
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	if !slots[0].Date.Equal(day) {
		t.Fatalf("date = %v, want %v", slots[0].Date, day)
	}
}
