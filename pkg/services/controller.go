package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lockedin/lockedin-web/pkg/clients/lockedin"
	"github.com/lockedin/lockedin-web/pkg/config"
	"github.com/lockedin/lockedin-web/pkg/metrics"
	"github.com/lockedin/lockedin-web/pkg/models"
	"github.com/lockedin/lockedin-web/pkg/utils"
)

// Messages shown when the backend gives no detail.
const (
	MsgSignupFailed = "Signup failed. Please try again."
	MsgUpdateFailed = "Failed to update reminder times. Please try again."
	MsgLookupFailed = "Could not load your account. Please try again."
)

// ViewController drives the signup → success → manage flow of a session.
// Every failure is recorded on the session as a message for the current
// screen; returned errors are for logging and status codes only.
type ViewController interface {
	Render(s *Session) Screen
	ReportError(s *Session, message string)

	ApplySignupForm(s *Session, form models.SignupFormData) error
	SubmitSignup(ctx context.Context, s *Session) error
	LookupUser(ctx context.Context, s *Session, phone string) error

	RequestManage(s *Session) error
	ApplyReminderTimes(s *Session, times []string) error
	SubmitReminderTimes(ctx context.Context, s *Session) error
	Back(s *Session) error
}

type viewControllerImpl struct {
	client   lockedin.Client
	metrics  metrics.Recorder
	logger   *zap.Logger
	ackDelay time.Duration
	now      func() time.Time
}

// Option configures a ViewController.
type Option func(*viewControllerImpl)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *viewControllerImpl) {
		c.now = now
	}
}

// NewViewController creates a new view controller
func NewViewController(
	client lockedin.Client,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) ViewController {
	c := &viewControllerImpl{
		client:   client,
		metrics:  recorder,
		logger:   logger.Named("controller"),
		ackDelay: cfg.AckDelay,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *viewControllerImpl) Render(s *Session) Screen {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewSignup && s.user == nil {
		c.logger.Error("no user held, falling back to signup", zap.String("session", s.ID), zap.String("view", string(s.view)))
		c.transition(s, ViewSignup)
		s.manage = nil
		if s.draft == nil {
			s.draft = models.NewDraftSignup()
		}
	}

	screen := Screen{
		View:    s.view,
		Error:   s.errMsg,
		Pending: s.pending,
	}
	if s.draft != nil {
		screen.Draft = *s.draft
	}
	if s.user != nil {
		screen.User = s.user.Clone()
		screen.Reminders = screen.User.Reminders()
	}
	if s.view == ViewManage && s.manage != nil {
		times := s.manage.Times()
		screen.ManageRows = make([]models.GoalReminder, len(s.user.Goals))
		for i, goal := range s.user.Goals {
			screen.ManageRows[i].Goal = goal
			if i < len(times) {
				screen.ManageRows[i].Time = times[i]
			}
		}
	}

	if !s.ackUntil.IsZero() {
		remaining := s.ackUntil.Sub(c.now())
		if remaining > 0 && s.view == ViewManage {
			screen.Acknowledged = true
			screen.AckSeconds = int(math.Ceil(remaining.Seconds()))
		} else {
			s.ackUntil = time.Time{}
		}
	}
	return screen
}

func (c *viewControllerImpl) ReportError(s *Session, message string) {
	s.mu.Lock()
	s.errMsg = message
	s.mu.Unlock()
}

func (c *viewControllerImpl) ApplySignupForm(s *Session, form models.SignupFormData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewSignup || s.draft == nil {
		return fmt.Errorf("editing signup in %s view: %w", s.view, ErrInvalidTransition)
	}

	d := s.draft
	fields := []struct {
		field models.Field
		value string
	}{
		{models.FieldName, form.Name},
		{models.FieldEmail, form.Email},
		{models.FieldPhone, form.Phone},
	}
	for _, f := range fields {
		if err := d.SetField(f.field, f.value); err != nil {
			return err
		}
	}
	for i := 0; i < len(form.Goals) && i < models.Slots; i++ {
		if err := d.SetGoal(i, form.Goals[i]); err != nil {
			return err
		}
	}
	for i := 0; i < len(form.ReminderTimes) && i < models.Slots; i++ {
		if err := d.SetReminderTime(i, form.ReminderTimes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *viewControllerImpl) SubmitSignup(ctx context.Context, s *Session) (err error) {
	s.mu.Lock()
	if s.view != ViewSignup || s.draft == nil {
		view := s.view
		s.mu.Unlock()
		return fmt.Errorf("signup submit in %s view: %w", view, ErrInvalidTransition)
	}
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		c.metrics.RecordRejectedSubmit()
		return err
	}

	payload, err := s.draft.BuildSubmissionPayload()
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.errMsg = verr.Message()
			c.metrics.RecordValidationFailure(verr.Reason)
		}
		s.pending = false
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	phoneHash := utils.PhoneFingerprint(payload.Phone)
	if payload.Misaligned() {
		c.logger.Warn("reminder times no longer aligned with goals",
			zap.String("phone_hash", phoneHash),
			zap.Strings("goals", payload.Goals),
			zap.Strings("reminder_times", payload.ReminderTimes))
		c.metrics.RecordMisalignedSubmission()
	}

	var user *models.User
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = false

		if err == nil && user == nil {
			err = fmt.Errorf("signup returned no user: %w", lockedin.ErrMalformedUser)
		}
		if err != nil {
			s.errMsg = lockedin.Message(err, MsgSignupFailed)
			c.logger.Warn("signup failed", zap.String("phone_hash", phoneHash), zap.Error(err))
			return
		}
		c.commitUser(s, user)
		c.logger.Info("signup complete", zap.String("session", s.ID), zap.String("phone_hash", phoneHash))
	}()

	start := c.now()
	user, err = c.client.Signup(ctx, payload)
	c.recordCall(lockedin.OpSignup, start, err)
	return err
}

func (c *viewControllerImpl) LookupUser(ctx context.Context, s *Session, phone string) (err error) {
	phone = models.NormalizePhone(phone)
	phoneHash := utils.PhoneFingerprint(phone)

	s.mu.Lock()
	if s.view != ViewSignup {
		view := s.view
		s.mu.Unlock()
		return fmt.Errorf("lookup in %s view: %w", view, ErrInvalidTransition)
	}
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		c.metrics.RecordRejectedSubmit()
		return err
	}
	s.mu.Unlock()

	var user *models.User
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = false

		if err == nil && user == nil {
			err = fmt.Errorf("lookup returned no user: %w", lockedin.ErrMalformedUser)
		}
		if err != nil {
			s.errMsg = lockedin.Message(err, MsgLookupFailed)
			c.logger.Info("lookup failed", zap.String("phone_hash", phoneHash), zap.Error(err))
			return
		}
		c.commitUser(s, user)
	}()

	start := c.now()
	user, err = c.client.GetUser(ctx, phone)
	c.recordCall(lockedin.OpGetUser, start, err)
	return err
}

func (c *viewControllerImpl) RequestManage(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewSuccess || s.user == nil {
		return fmt.Errorf("manage requested in %s view: %w", s.view, ErrInvalidTransition)
	}
	s.manage = models.NewManageDraft(s.user)
	s.errMsg = ""
	s.ackUntil = time.Time{}
	c.transition(s, ViewManage)
	return nil
}

func (c *viewControllerImpl) ApplyReminderTimes(s *Session, times []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewManage || s.manage == nil {
		return fmt.Errorf("editing reminder times in %s view: %w", s.view, ErrInvalidTransition)
	}
	for i, t := range times {
		if err := s.manage.SetTime(i, t); err != nil {
			return err
		}
	}
	return nil
}

func (c *viewControllerImpl) SubmitReminderTimes(ctx context.Context, s *Session) (err error) {
	s.mu.Lock()
	if s.view != ViewManage || s.manage == nil || s.user == nil {
		view := s.view
		s.mu.Unlock()
		return fmt.Errorf("reminder update in %s view: %w", view, ErrInvalidTransition)
	}
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		c.metrics.RecordRejectedSubmit()
		return err
	}
	s.ackUntil = time.Time{}
	payload := s.manage.BuildUpdatePayload()
	s.mu.Unlock()

	phoneHash := utils.PhoneFingerprint(payload.Phone)
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = false

		if err != nil {
			s.errMsg = lockedin.Message(err, MsgUpdateFailed)
			c.logger.Warn("reminder update failed", zap.String("phone_hash", phoneHash), zap.Error(err))
			return
		}
		if s.user != nil {
			s.user.ReminderTimes = append([]string(nil), payload.ReminderTimes...)
		}
		if s.view == ViewManage {
			s.ackUntil = c.now().Add(c.ackDelay)
		}
	}()

	start := c.now()
	err = c.client.UpdateReminderTimes(ctx, payload)
	c.recordCall(lockedin.OpUpdateReminderTimes, start, err)
	return err
}

func (c *viewControllerImpl) Back(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewManage {
		return fmt.Errorf("back in %s view: %w", s.view, ErrInvalidTransition)
	}
	s.manage = nil
	s.errMsg = ""
	s.ackUntil = time.Time{}
	c.transition(s, ViewSuccess)
	return nil
}

// commitUser stores a freshly returned user and moves to the success view.
// Must be called with s.mu held.
func (c *viewControllerImpl) commitUser(s *Session, user *models.User) {
	s.user = user.Clone()
	s.draft = nil
	s.errMsg = ""
	c.transition(s, ViewSuccess)
}

// transition must be called with s.mu held.
func (c *viewControllerImpl) transition(s *Session, to View) {
	from := s.view
	s.view = to
	c.metrics.RecordTransition(string(from), string(to))
	c.logger.Debug("view transition", zap.String("session", s.ID), zap.String("from", string(from)), zap.String("to", string(to)))
}

func (c *viewControllerImpl) recordCall(op string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	c.metrics.RecordBackendCall(op, outcome, c.now().Sub(start))
}
