package models

import "github.com/go-playground/validator/v10"

// User is the record returned by the LockedIn backend.
// Goals only holds the non-empty goals, in server order, and ReminderTimes is
// aligned with them by index.
type User struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name" validate:"required"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone" validate:"required"`
	Goals         []string `json:"goals" validate:"required,min=1"`
	ReminderTimes []string `json:"reminder_times" validate:"required"`
	Timezone      string   `json:"timezone,omitempty"`
	Active        bool     `json:"active,omitempty"`

	// Kept as sent. The backend writes naive ISO timestamps without an offset.
	CreatedAt string `json:"created_at,omitempty"`
}

// GoalReminder pairs a goal with the reminder time at the same position.
type GoalReminder struct {
	Goal string
	Time string
}

var userValidator = validator.New()

// Validate reports whether u carries the fields the screens depend on.
func (u *User) Validate() error {
	return userValidator.Struct(u)
}

// Reminders zips goals and reminder times positionally. A goal without a
// matching time gets an empty Time.
func (u *User) Reminders() []GoalReminder {
	pairs := make([]GoalReminder, len(u.Goals))
	for i, goal := range u.Goals {
		pairs[i].Goal = goal
		if i < len(u.ReminderTimes) {
			pairs[i].Time = u.ReminderTimes[i]
		}
	}
	return pairs
}

// Clone returns a deep copy so callers can never alias the session's record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Goals = append([]string(nil), u.Goals...)
	c.ReminderTimes = append([]string(nil), u.ReminderTimes...)
	return &c
}

// SignupPayload is the body of POST /api/users/signup.
type SignupPayload struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Goals         []string `json:"goals"`
	ReminderTimes []string `json:"reminder_times"`

	// goal positions shifted by filtering; not sent
	misaligned bool
}

// Misaligned reports whether empty goal slots were dropped ahead of a kept
// goal, so ReminderTimes no longer lines up with Goals by index.
func (p SignupPayload) Misaligned() bool {
	return p.misaligned
}

// ReminderTimesPayload is the body of PUT /api/users/reminder-times.
type ReminderTimesPayload struct {
	Phone         string   `json:"phone"`
	ReminderTimes []string `json:"reminder_times"`
}
