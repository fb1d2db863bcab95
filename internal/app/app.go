// Package app wires the transfer coordinator, per-session notification
// pollers and the HTTP surface into one user-facing session layer.
package app

import (
	"calendar-service/internal/event"
	"calendar-service/internal/notify"
	"calendar-service/internal/transfer"
	"calendar-service/internal/user"
)

type App struct {
	Events      event.Repository
	Users       user.Repository
	Ledger      notify.Ledger
	Broker      *notify.Broker
	Coordinator *transfer.Coordinator
	Sessions    *SessionManager
}

func New(events event.Repository, users user.Repository, ledger notify.Ledger, broker *notify.Broker, sessions *SessionManager) *App {
	return &App{
		Events:      events,
		Users:       users,
		Ledger:      ledger,
		Broker:      broker,
		Coordinator: transfer.NewCoordinator(events, users, broker),
		Sessions:    sessions,
	}
}
