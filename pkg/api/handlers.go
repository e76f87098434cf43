package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lockedin/lockedin-web/pkg/clients/lockedin"
	"github.com/lockedin/lockedin-web/pkg/middleware"
	"github.com/lockedin/lockedin-web/pkg/models"
	"github.com/lockedin/lockedin-web/pkg/services"
)

// Handlers contains all HTTP handlers for the frontend
type Handlers struct {
	controller services.ViewController
	client     lockedin.Client
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(controller services.ViewController, client lockedin.Client, logger *zap.Logger) *Handlers {
	return &Handlers{
		controller: controller,
		client:     client,
		logger:     logger.Named("api"),
	}
}

// RegisterPages registers the screen routes. r must carry the session middleware.
func (h *Handlers) RegisterPages(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.POST("/signup", h.Signup)
	r.POST("/lookup", h.Lookup)
	r.POST("/manage", h.Manage)
	r.POST("/manage/reminder-times", h.UpdateReminderTimes)
	r.POST("/manage/back", h.Back)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready reports whether the LockedIn backend answers.
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.client.Ping(ctx); err != nil {
		h.logger.Warn("backend not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Index renders whatever screen the session is on.
func (h *Handlers) Index(c *gin.Context) {
	h.render(c, http.StatusOK)
}

func (h *Handlers) Signup(c *gin.Context) {
	s := session(c)

	var form models.SignupFormData
	bindErr := c.ShouldBind(&form)
	if err := h.controller.ApplySignupForm(s, form); err != nil {
		h.done(c, err)
		return
	}
	if bindErr != nil {
		h.controller.ReportError(s, formMessage(bindErr))
		h.done(c, nil)
		return
	}

	h.done(c, h.controller.SubmitSignup(c.Request.Context(), s))
}

func (h *Handlers) Lookup(c *gin.Context) {
	s := session(c)

	var form models.LookupFormData
	if err := c.ShouldBind(&form); err != nil {
		h.controller.ReportError(s, formMessage(err))
		h.done(c, nil)
		return
	}

	h.done(c, h.controller.LookupUser(c.Request.Context(), s, strings.TrimSpace(form.Phone)))
}

func (h *Handlers) Manage(c *gin.Context) {
	h.done(c, h.controller.RequestManage(session(c)))
}

func (h *Handlers) UpdateReminderTimes(c *gin.Context) {
	s := session(c)

	var form models.ReminderTimesFormData
	bindErr := c.ShouldBind(&form)
	if err := h.controller.ApplyReminderTimes(s, form.ReminderTimes); err != nil {
		if errors.Is(err, models.ErrIndexOutOfRange) {
			h.controller.ReportError(s, "Each goal has exactly one reminder time.")
		}
		h.done(c, err)
		return
	}
	if bindErr != nil {
		h.controller.ReportError(s, formMessage(bindErr))
		h.done(c, nil)
		return
	}

	h.done(c, h.controller.SubmitReminderTimes(c.Request.Context(), s))
}

func (h *Handlers) Back(c *gin.Context) {
	h.done(c, h.controller.Back(session(c)))
}

// done finishes a form post. Outcomes already live on the session, so the
// browser is sent back to GET / unless another submit is still in flight.
func (h *Handlers) done(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	if errors.Is(err, services.ErrSubmissionPending) {
		h.render(c, http.StatusConflict)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) render(c *gin.Context, status int) {
	screen := h.controller.Render(session(c))
	c.HTML(status, string(screen.View)+".tmpl", screen)
}

func session(c *gin.Context) *services.Session {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		// routes are registered behind middleware.Sessions
		panic("api: no session on request")
	}
	return s
}

// formMessage turns a binding error into the text shown above the form.
func formMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again."
	}

	fe := verrs[0]
	switch {
	case fe.StructField() == "Name":
		return "Please enter your name."
	case fe.StructField() == "Email":
		return "Please enter a valid email address."
	case fe.StructField() == "Phone":
		return "Please enter your phone number."
	case strings.HasPrefix(fe.StructField(), "ReminderTimes"):
		return "Reminder times must be in HH:MM format."
	case strings.HasPrefix(fe.StructField(), "Goals"):
		return "Please fill in your goals."
	default:
		return "Please check the form and try again."
	}
}
