package lockedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lockedin/lockedin-web/pkg/models"
	"github.com/lockedin/lockedin-web/pkg/utils"
)

// Client defines the interface for interacting with the LockedIn backend API
type Client interface {
	Signup(ctx context.Context, payload models.SignupPayload) (*models.User, error)
	UpdateReminderTimes(ctx context.Context, payload models.ReminderTimesPayload) error
	GetUser(ctx context.Context, phone string) (*models.User, error)
	Ping(ctx context.Context) error
}

type clientImpl struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new LockedIn backend client. A zero timeout leaves the
// transport default in place.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) Client {
	return &clientImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("lockedin"),
	}
}

func (c *clientImpl) Signup(ctx context.Context, payload models.SignupPayload) (*models.User, error) {
	body, err := c.do(ctx, OpSignup, http.MethodPost, "/api/users/signup", payload)
	if err != nil {
		return nil, err
	}

	user, err := decodeUser(OpSignup, body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("user signed up",
		zap.String("phone_hash", utils.PhoneFingerprint(user.Phone)),
		zap.Int("goals", len(user.Goals)))
	return user, nil
}

func (c *clientImpl) UpdateReminderTimes(ctx context.Context, payload models.ReminderTimesPayload) error {
	if _, err := c.do(ctx, OpUpdateReminderTimes, http.MethodPut, "/api/users/reminder-times", payload); err != nil {
		return err
	}

	c.logger.Info("reminder times updated",
		zap.String("phone_hash", utils.PhoneFingerprint(payload.Phone)),
		zap.Strings("reminder_times", payload.ReminderTimes))
	return nil
}

func (c *clientImpl) GetUser(ctx context.Context, phone string) (*models.User, error) {
	body, err := c.do(ctx, OpGetUser, http.MethodGet, "/api/users/"+url.PathEscape(phone), nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(OpGetUser, body)
}

// Ping checks that the backend root answers.
func (c *clientImpl) Ping(ctx context.Context) error {
	_, err := c.do(ctx, OpPing, http.MethodGet, "/api/", nil)
	return err
}

func (c *clientImpl) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			return nil, &TransportError{Op: op, Err: fmt.Errorf("error creating payload: %w", err)}
		}
		reqBody = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("error calling LockedIn API: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("error reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("LockedIn API returned an error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
		}
	}
	return body, nil
}

func decodeUser(op string, body []byte) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("error parsing response: %w", err)}
	}
	if err := user.Validate(); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedUser, err)}
	}
	return &user, nil
}

// parseDetail pulls a string "detail" out of an error body. Anything else,
// including FastAPI's list-shaped validation details, yields "".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
