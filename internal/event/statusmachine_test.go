package event

import (
	"sort"
	"testing"

	"calendar-service/internal/user"
)

var allStatuses = []Status{
	StatusUnassigned, StatusFree, StatusAssigned, StatusInProgress,
	StatusCompleted, StatusAvailableForTakeover, StatusTransferring,
	StatusTransferred,
}

func sorted(m map[Status]bool) []Status {
	out := make([]Status, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalSets(a []Status, b map[Status]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for _, s := range a {
		if !b[s] {
			return false
		}
	}
	return true
}

func TestAllowedTransitionsAdministrator(t *testing.T) {
	want := []Status{
		StatusAssigned, StatusInProgress, StatusCompleted,
		StatusAvailableForTakeover, StatusFree, StatusUnassigned,
	}
	for _, current := range allStatuses {
		got := AllowedTransitions(current, user.RoleAdministrator)
		if !equalSets(want, got) {
			t.Errorf("admin from %s: got %v, want %v", current, sorted(got), want)
		}
		if got[StatusTransferring] || got[StatusTransferred] {
			t.Errorf("admin from %s: protocol-only statuses must not be directly settable", current)
		}
	}
}

func TestAllowedTransitionsMembers(t *testing.T) {
	tests := []struct {
		current Status
		want    []Status
	}{
		{StatusUnassigned, []Status{StatusAssigned}},
		{StatusFree, []Status{StatusAssigned}},
		{StatusAssigned, []Status{StatusInProgress, StatusCompleted, StatusTransferring, StatusAvailableForTakeover}},
		{StatusInProgress, []Status{StatusCompleted, StatusTransferring, StatusAvailableForTakeover}},
		{StatusCompleted, []Status{StatusTransferring}},
		{StatusTransferring, []Status{StatusTransferred, StatusAssigned}},
		{StatusTransferred, []Status{StatusInProgress}},
		{StatusAvailableForTakeover, nil},
	}
	for _, role := range []user.Role{user.RoleSupervisor, user.RoleOrganizer} {
		for _, tt := range tests {
			got := AllowedTransitions(tt.current, role)
			if !equalSets(tt.want, got) {
				t.Errorf("%s from %s: got %v, want %v", role, tt.current, sorted(got), tt.want)
			}
			// Everything outside the documented set must be refused.
			for _, target := range allStatuses {
				inWant := false
				for _, w := range tt.want {
					if w == target {
						inWant = true
					}
				}
				if CanTransition(tt.current, role, target) != inWant {
					t.Errorf("%s: CanTransition(%s -> %s) = %v, want %v",
						role, tt.current, target, !inWant, inWant)
				}
			}
		}
	}
}

func TestTransferIntentAllowed(t *testing.T) {
	want := map[Status]bool{
		StatusAssigned:   true,
		StatusInProgress: true,
		StatusCompleted:  true,
	}
	for _, s := range allStatuses {
		if TransferIntentAllowed(s) != want[s] {
			t.Errorf("TransferIntentAllowed(%s) = %v, want %v", s, !want[s], want[s])
		}
	}
}

func TestProtocolOnly(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusTransferring || s == StatusTransferred
		if ProtocolOnly(s) != want {
			t.Errorf("ProtocolOnly(%s) = %v, want %v", s, !want, want)
		}
	}
}

func TestStatusPending(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusTransferring || s == StatusAvailableForTakeover
		if s.Pending() != want {
			t.Errorf("Pending(%s) = %v, want %v", s, !want, want)
		}
	}
}
