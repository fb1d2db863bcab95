package event

import "calendar-service/internal/user"

// The transition rules are a closed table over (status, role) so adding a
// status without updating the table is caught here rather than scattered
// through handlers.

// adminTargets is the administrative override set: an administrator may move
// an event into any of these regardless of its current status. Transferring
// and Transferred are absent on purpose; they are only ever produced by the
// transfer protocol itself.
var adminTargets = []Status{
	StatusAssigned,
	StatusInProgress,
	StatusCompleted,
	StatusAvailableForTakeover,
	StatusFree,
	StatusUnassigned,
}

// memberTransitions is the strict per-state table for supervisors and
// organizers. Transferring appearing as a target means "may initiate a
// transfer from here", not that the status can be set directly;
// AvailableForTakeover is left with no outgoing entries because a released
// slot is claimed through the takeover operation, never chosen as a
// transition.
var memberTransitions = map[Status][]Status{
	StatusUnassigned:           {StatusAssigned},
	StatusFree:                 {StatusAssigned},
	StatusAssigned:             {StatusInProgress, StatusCompleted, StatusTransferring, StatusAvailableForTakeover},
	StatusInProgress:           {StatusCompleted, StatusTransferring, StatusAvailableForTakeover},
	StatusCompleted:            {StatusTransferring},
	StatusTransferring:         {StatusTransferred, StatusAssigned},
	StatusTransferred:          {StatusInProgress},
	StatusAvailableForTakeover: {},
}

// AllowedTransitions returns the set of statuses the given role may move an
// event to from the current status.
func AllowedTransitions(current Status, role user.Role) map[Status]bool {
	var targets []Status
	if role == user.RoleAdministrator {
		targets = adminTargets
	} else {
		targets = memberTransitions[current]
	}
	out := make(map[Status]bool, len(targets))
	for _, t := range targets {
		out[t] = true
	}
	return out
}

// CanTransition reports whether role may move an event from current to
// target.
func CanTransition(current Status, role user.Role, target Status) bool {
	return AllowedTransitions(current, role)[target]
}

// ProtocolOnly reports whether the status may only be produced by the
// transfer protocol (initiate/accept), never requested as a direct
// transition.
func ProtocolOnly(target Status) bool {
	return target == StatusTransferring || target == StatusTransferred
}

// TransferIntentAllowed reports whether a transfer may be initiated while
// the event is in the given status. This is the Transferring column of the
// member table; administrators initiate under the same rule since a transfer
// needs a current owner in a settled state.
func TransferIntentAllowed(current Status) bool {
	switch current {
	case StatusAssigned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}
