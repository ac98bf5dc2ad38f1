package tui

import (
	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/fetch"
)

// resultMsg carries the outcome of one operation back to Update.
type resultMsg struct {
	ticket fetch.Ticket
	record domain.Record
	err    error
}

type browserErrMsg struct {
	err error
}
