package models_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockedin/lockedin-web/pkg/models"
)

func filledDraft(t *testing.T, goals ...string) *models.DraftSignup {
	t.Helper()
	d := models.NewDraftSignup()
	require.NoError(t, d.SetField(models.FieldName, "Ada"))
	require.NoError(t, d.SetField(models.FieldEmail, "ada@example.com"))
	require.NoError(t, d.SetField(models.FieldPhone, "2348012345678"))
	for i, g := range goals {
		require.NoError(t, d.SetGoal(i, g))
	}
	return d
}

func TestDraftSignup(t *testing.T) {
	t.Parallel()

	t.Run("starts with default reminder times", func(t *testing.T) {
		t.Parallel()
		d := models.NewDraftSignup()
		assert.Equal(t, [3]string{"09:00", "14:00", "20:00"}, d.ReminderTimes)
		assert.Equal(t, [3]string{}, d.Goals)
	})

	t.Run("rejects out of range slots", func(t *testing.T) {
		t.Parallel()
		d := models.NewDraftSignup()
		assert.ErrorIs(t, d.SetGoal(3, "x"), models.ErrIndexOutOfRange)
		assert.ErrorIs(t, d.SetGoal(-1, "x"), models.ErrIndexOutOfRange)
		assert.ErrorIs(t, d.SetReminderTime(3, "10:00"), models.ErrIndexOutOfRange)
		assert.ErrorIs(t, d.SetField("age", "3"), models.ErrUnknownField)
	})

	t.Run("no goals is a validation error", func(t *testing.T) {
		t.Parallel()
		for _, goals := range [][]string{{"", "", ""}, {" ", "\t", ""}, {}} {
			d := filledDraft(t, goals...)
			_, err := d.BuildSubmissionPayload()

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, models.ReasonNoGoals, verr.Reason)
		}
	})

	t.Run("goal filtering preserves order", func(t *testing.T) {
		t.Parallel()
		d := filledDraft(t, "", "Run", "Read")
		p, err := d.BuildSubmissionPayload()
		require.NoError(t, err)

		assert.Equal(t, []string{"Run", "Read"}, p.Goals)
		assert.Equal(t, []string{"09:00", "14:00", "20:00"}, p.ReminderTimes)
		assert.True(t, p.Misaligned())
	})

	t.Run("trailing empty goals keep alignment", func(t *testing.T) {
		t.Parallel()
		d := filledDraft(t, " Run ", "Read", "")
		p, err := d.BuildSubmissionPayload()
		require.NoError(t, err)

		assert.Equal(t, []string{"Run", "Read"}, p.Goals)
		assert.False(t, p.Misaligned())
	})

	t.Run("payload carries scalar fields", func(t *testing.T) {
		t.Parallel()
		d := filledDraft(t, "Run")
		require.NoError(t, d.SetReminderTime(1, "15:30"))
		p, err := d.BuildSubmissionPayload()
		require.NoError(t, err)

		assert.Equal(t, "Ada", p.Name)
		assert.Equal(t, "ada@example.com", p.Email)
		assert.Equal(t, "+2348012345678", p.Phone)
		assert.Equal(t, []string{"09:00", "15:30", "20:00"}, p.ReminderTimes)
	})

	t.Run("payload does not alias the draft", func(t *testing.T) {
		t.Parallel()
		d := filledDraft(t, "Run")
		p, err := d.BuildSubmissionPayload()
		require.NoError(t, err)

		p.ReminderTimes[0] = "00:00"
		assert.Equal(t, "09:00", d.ReminderTimes[0])
	})
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"15551234567":  "+15551234567",
		"+15551234567": "+15551234567",
		"":             "+",
		"0044 20 7946": "+0044 20 7946",
	} {
		assert.Equal(t, want, models.NormalizePhone(in), in)
	}
}

func TestManageDraft(t *testing.T) {
	t.Parallel()

	user := func() *models.User {
		return &models.User{
			Name:          "Ada",
			Phone:         "+15551234567",
			Goals:         []string{"Run", "Read"},
			ReminderTimes: []string{"07:00", "21:00", "20:00"},
		}
	}

	t.Run("edits never reach the user", func(t *testing.T) {
		t.Parallel()
		u := user()
		m := models.NewManageDraft(u)
		require.NoError(t, m.SetTime(0, "06:30"))

		assert.Equal(t, "07:00", u.ReminderTimes[0])
		assert.Equal(t, []string{"06:30", "21:00", "20:00"}, m.Times())
	})

	t.Run("index is bound by goals", func(t *testing.T) {
		t.Parallel()
		m := models.NewManageDraft(user())
		assert.NoError(t, m.SetTime(1, "22:00"))
		assert.ErrorIs(t, m.SetTime(2, "22:00"), models.ErrIndexOutOfRange)
		assert.ErrorIs(t, m.SetTime(-1, "22:00"), models.ErrIndexOutOfRange)
	})

	t.Run("update payload", func(t *testing.T) {
		t.Parallel()
		m := models.NewManageDraft(user())
		require.NoError(t, m.SetTime(1, "22:15"))

		p := m.BuildUpdatePayload()
		assert.Equal(t, "+15551234567", p.Phone)
		assert.Equal(t, []string{"07:00", "22:15", "20:00"}, p.ReminderTimes)
	})
}

func TestUser(t *testing.T) {
	t.Parallel()

	t.Run("reminders zip positionally", func(t *testing.T) {
		t.Parallel()
		u := &models.User{Goals: []string{"Run", "Read", "Write"}, ReminderTimes: []string{"09:00", "14:00"}}
		assert.Equal(t, []models.GoalReminder{
			{Goal: "Run", Time: "09:00"},
			{Goal: "Read", Time: "14:00"},
			{Goal: "Write", Time: ""},
		}, u.Reminders())
	})

	t.Run("validate requires the displayed fields", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, (&models.User{}).Validate())
		assert.Error(t, (&models.User{Name: "Ada", Phone: "+1", ReminderTimes: []string{}}).Validate())
		assert.NoError(t, (&models.User{
			Name: "Ada", Phone: "+1", Goals: []string{"Run"}, ReminderTimes: []string{"09:00"},
		}).Validate())
	})

	t.Run("clone is deep", func(t *testing.T) {
		t.Parallel()
		u := &models.User{Name: "Ada", Goals: []string{"Run"}, ReminderTimes: []string{"09:00"}}
		c := u.Clone()
		c.ReminderTimes[0] = "10:00"
		assert.Equal(t, "09:00", u.ReminderTimes[0])
		assert.Nil(t, (*models.User)(nil).Clone())
	})
}

func TestTimeOfDay(t *testing.T) {
	t.Parallel()

	v := validator.New()
	require.NoError(t, models.RegisterValidators(v))

	for _, ok := range []string{"00:00", "09:05", "23:59", "14:00"} {
		assert.True(t, models.IsTimeOfDay(ok), ok)
		assert.NoError(t, v.Var(ok, "hhmm"), ok)
	}
	for _, bad := range []string{"", "9:00", "24:00", "12:60", "12:00:00", "noon"} {
		assert.False(t, models.IsTimeOfDay(bad), bad)
		assert.Error(t, v.Var(bad, "hhmm"), bad)
	}
}

func TestSignupFormData(t *testing.T) {
	t.Parallel()

	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, models.RegisterValidators(v))

	valid := models.SignupFormData{
		Name:          "Ada",
		Email:         "ada@example.com",
		Phone:         "15551234567",
		Goals:         []string{"Run", "", ""},
		ReminderTimes: []string{"09:00", "14:00", "20:00"},
	}
	require.NoError(t, v.Struct(valid))

	blankName := valid
	blankName.Name = "  \t "
	var verrs validator.ValidationErrors
	require.ErrorAs(t, v.Struct(blankName), &verrs)
	assert.Equal(t, "Name", verrs[0].StructField())
	assert.Equal(t, "notblank", verrs[0].Tag())

	blankPhone := valid
	blankPhone.Phone = " "
	require.ErrorAs(t, v.Struct(blankPhone), &verrs)
	assert.Equal(t, "Phone", verrs[0].StructField())

	assert.Error(t, v.Struct(models.LookupFormData{Phone: "   "}))
}
