package models

// Represents the data structure posted by the signup screen.
// Goals and reminder times are submitted as three repeated inputs each,
// empty goal inputs included.
type SignupFormData struct {
	Name          string   `form:"name" binding:"required,notblank"`
	Email         string   `form:"email" binding:"required,email"`
	Phone         string   `form:"phone" binding:"required,notblank"`
	Goals         []string `form:"goals" binding:"len=3"`
	ReminderTimes []string `form:"reminder_times" binding:"len=3,dive,hhmm"`
}

// ReminderTimesFormData is posted by the manage screen, one time per goal.
type ReminderTimesFormData struct {
	ReminderTimes []string `form:"reminder_times" binding:"required,min=1,max=3,dive,hhmm"`
}

// LookupFormData lets a returning user load their record by phone number.
type LookupFormData struct {
	Phone string `form:"phone" binding:"required,notblank"`
}
