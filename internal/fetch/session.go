package fetch

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/errs"
)

// View is one tool view of the presentation layer.
type View string

const (
	ViewAINews    View = "ai_news"
	ViewPhoneNews View = "phone_news"
	ViewCompare   View = "compare"
	ViewSearch    View = "search"
	ViewStats     View = "stats"
)

// Views lists the tool views in tab order.
var Views = []View{ViewAINews, ViewPhoneNews, ViewCompare, ViewSearch, ViewStats}

// Category returns the cacheable category behind a view, if any.
func (v View) Category() (domain.Category, bool) {
	return domain.ParseCategory(string(v))
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// ViewState is what the presentation layer renders for a view. After a
// failure Record still holds the last good result, shown next to Err.
type ViewState struct {
	Status    Status
	Record    domain.Record
	Err       string
	UpdatedAt time.Time
}

// Ticket identifies one started operation.
type Ticket struct {
	View View
	gen  uint64
}

type viewSlot struct {
	state ViewState
	prev  Status
	gen   uint64
}

// Session tracks per-view state and discards results that arrive for a view
// the user has left or for an operation that a newer one superseded.
type Session struct {
	mu     sync.Mutex
	active View
	slots  map[View]*viewSlot
	now    func() time.Time
}

func NewSession(initial View) *Session {
	return &Session{active: initial, slots: make(map[View]*viewSlot), now: time.Now}
}

func (s *Session) slot(v View) *viewSlot {
	sl, ok := s.slots[v]
	if !ok {
		sl = &viewSlot{}
		s.slots[v] = sl
	}
	return sl
}

// Navigate makes v the active view.
func (s *Session) Navigate(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = v
}

func (s *Session) Active() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Begin marks v as loading and returns the ticket its outcome must carry.
func (s *Session) Begin(v View) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slot(v)
	sl.gen++
	if sl.state.Status != StatusLoading {
		sl.prev = sl.state.Status
	}
	sl.state.Status = StatusLoading
	return Ticket{View: v, gen: sl.gen}
}

// Finish applies an outcome and reports whether it was accepted. Outcomes
// for a superseded ticket, or for a view that is no longer active, are
// dropped; in the second case the view leaves the loading state so that a
// later visit starts cleanly.
func (s *Session) Finish(t Ticket, rec domain.Record, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slot(t.View)
	if t.gen != sl.gen {
		return false
	}
	if s.active != t.View {
		sl.state.Status = sl.prev
		return false
	}

	sl.state.UpdatedAt = s.now()
	if err != nil {
		sl.state.Status = StatusError
		sl.state.Err = userMessage(err)
		return true
	}
	sl.state.Status = StatusSuccess
	sl.state.Record = rec
	sl.state.Err = ""
	return true
}

// State returns a snapshot of v.
func (s *Session) State(v View) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot(v).state
}

func userMessage(err error) string {
	if errors.Is(err, ErrEmptyQuery) {
		return "Enter a phone name first."
	}
	return errs.UserMessage(err)
}
