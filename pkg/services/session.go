package services

import (
	"errors"
	"sync"
	"time"

	"github.com/lockedin/lockedin-web/pkg/models"
)

// View is one of the three screens.
type View string

const (
	ViewSignup  View = "signup"
	ViewSuccess View = "success"
	ViewManage  View = "manage"
)

var (
	ErrInvalidTransition = errors.New("event not allowed in the current view")
	ErrSubmissionPending = errors.New("a submission is already in progress")
)

// Session is the state of one browser: the current view, the drafts, and the
// committed user. Only the controller mutates it.
type Session struct {
	ID string

	mu       sync.Mutex
	view     View
	draft    *models.DraftSignup
	manage   *models.ManageDraft
	user     *models.User
	pending  bool
	errMsg   string
	ackUntil time.Time
	lastSeen time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		view:     ViewSignup,
		draft:    models.NewDraftSignup(),
		lastSeen: now,
	}
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// User returns a copy of the committed user, or nil.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// begin claims the single in-flight slot. Must be called with mu held.
func (s *Session) begin() error {
	if s.pending {
		return ErrSubmissionPending
	}
	s.pending = true
	s.errMsg = ""
	return nil
}

// Screen is an immutable snapshot of a session for rendering.
type Screen struct {
	View         View
	Draft        models.DraftSignup
	User         *models.User
	Reminders    []models.GoalReminder
	ManageRows   []models.GoalReminder
	Error        string
	Acknowledged bool
	AckSeconds   int
	Pending      bool
}
