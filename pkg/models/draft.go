package models

import (
	"fmt"
	"strings"
)

// Field names a scalar field of the signup draft.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

// Slots is the fixed number of goals and reminder times on the signup form.
const Slots = 3

// DefaultReminderTimes are the times a fresh draft starts with.
var DefaultReminderTimes = [Slots]string{"09:00", "14:00", "20:00"}

// DraftSignup holds the signup form while the user is typing.
// Nothing is validated on entry.
type DraftSignup struct {
	Name          string
	Email         string
	Phone         string
	Goals         [Slots]string
	ReminderTimes [Slots]string
}

// NewDraftSignup returns an empty draft with the default reminder times.
func NewDraftSignup() *DraftSignup {
	return &DraftSignup{ReminderTimes: DefaultReminderTimes}
}

func (d *DraftSignup) SetField(field Field, value string) error {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	default:
		return fmt.Errorf("error setting %q: %w", field, ErrUnknownField)
	}
	return nil
}

func (d *DraftSignup) SetGoal(index int, value string) error {
	if index < 0 || index >= Slots {
		return fmt.Errorf("error setting goal %d: %w", index, ErrIndexOutOfRange)
	}
	d.Goals[index] = value
	return nil
}

func (d *DraftSignup) SetReminderTime(index int, value string) error {
	if index < 0 || index >= Slots {
		return fmt.Errorf("error setting reminder time %d: %w", index, ErrIndexOutOfRange)
	}
	d.ReminderTimes[index] = value
	return nil
}

// BuildSubmissionPayload turns the draft into the signup request body.
// Empty goals are dropped in order; reminder times are sent as entered, all
// three of them, even when that leaves them out of step with the goals.
func (d *DraftSignup) BuildSubmissionPayload() (SignupPayload, error) {
	goals := make([]string, 0, Slots)
	misaligned := false
	for i, g := range d.Goals {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if len(goals) != i {
			misaligned = true
		}
		goals = append(goals, g)
	}
	if len(goals) == 0 {
		return SignupPayload{}, &ValidationError{Reason: ReasonNoGoals}
	}

	return SignupPayload{
		Name:          d.Name,
		Email:         d.Email,
		Phone:         NormalizePhone(d.Phone),
		Goals:         goals,
		ReminderTimes: append([]string(nil), d.ReminderTimes[:]...),
		misaligned:    misaligned,
	}, nil
}

// NormalizePhone prepends "+" unless the number already starts with one.
func NormalizePhone(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}

// ManageDraft holds reminder-time edits for a committed user. It owns its own
// copy of the times so edits never reach the user until an update succeeds.
type ManageDraft struct {
	phone string
	goals int
	times []string
}

func NewManageDraft(u *User) *ManageDraft {
	return &ManageDraft{
		phone: u.Phone,
		goals: len(u.Goals),
		times: append([]string(nil), u.ReminderTimes...),
	}
}

// SetTime replaces the time for the goal at index.
func (m *ManageDraft) SetTime(index int, value string) error {
	if index < 0 || index >= m.goals {
		return fmt.Errorf("error setting reminder time %d: %w", index, ErrIndexOutOfRange)
	}
	for len(m.times) <= index {
		m.times = append(m.times, "")
	}
	m.times[index] = value
	return nil
}

// Times returns a copy of the drafted times.
func (m *ManageDraft) Times() []string {
	return append([]string(nil), m.times...)
}

func (m *ManageDraft) BuildUpdatePayload() ReminderTimesPayload {
	return ReminderTimesPayload{
		Phone:         m.phone,
		ReminderTimes: m.Times(),
	}
}
