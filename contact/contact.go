// Package contact is a client for the portfolio contact-form endpoint.
//
// The endpoint accepts a JSON message and answers with either
// {"message": ...} on success or {"error": ...} on failure. Submit turns
// those into a confirmation string or an *Error; UserMessage maps any
// error to the text shown to the person submitting the form.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Texts shown when the server omits its own.
const (
	DefaultSuccess     = "Message sent successfully!"
	DefaultFailure     = "Failed to send message."
	UnavailableMessage = "An error occurred. Please try again later."
)

// Limits enforced by the server, in characters.
const (
	MaxNameLength    = 100
	MaxMessageLength = 1000
)

// maxResponseBytes bounds how much of a response body is decoded.
const maxResponseBytes = 1 << 20

// Validation errors, matching the server's rejections.
var (
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrTooLong       = errors.New("input too long")
)

// ErrUnavailable wraps transport failures and unreadable responses.
var ErrUnavailable = errors.New("contact endpoint unavailable")

// Error is a rejection reported by the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("contact: %s (status %d)", e.Message, e.StatusCode)
}

// Message is one contact-form submission.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Trimmed returns m with surrounding whitespace removed from every field.
func (m Message) Trimmed() Message {
	return Message{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Message: strings.TrimSpace(m.Message),
	}
}

// Validate applies the server's rules to the trimmed message.
func (m Message) Validate() error {
	t := m.Trimmed()
	if t.Name == "" || t.Email == "" || t.Message == "" {
		return ErrMissingFields
	}
	if !validEmail(t.Email) {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(t.Name) > MaxNameLength || utf8.RuneCountInString(t.Message) > MaxMessageLength {
		return ErrTooLong
	}
	return nil
}

// validEmail accepts a bare address with a dotted domain. Display names
// ("Ann <ann@example.com>") are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var cerr *Error
	switch {
	case err == nil:
		return DefaultSuccess
	case errors.As(err, &cerr):
		return cerr.Message
	case errors.Is(err, ErrMissingFields):
		return "All fields are required"
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, ErrTooLong):
		return "Input too long"
	}
	return UnavailableMessage
}

// Client submits messages to one endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for endpoint. A zero timeout means none.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the submission URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type response struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  string `json:"status"`
}

// Submit posts m and returns the server's confirmation. A rejection is
// an *Error; a transport failure or unreadable body wraps ErrUnavailable.
func (c *Client) Submit(ctx context.Context, m Message) (string, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, res, err := c.do(req)
	if err != nil {
		return "", err
	}

	if status >= 200 && status < 300 {
		slog.Info("contact message sent", "status", status)
		if res.Message == "" {
			return DefaultSuccess, nil
		}
		return res.Message, nil
	}

	slog.Warn("contact message rejected", "status", status, "error", res.Error)
	msg := res.Error
	if msg == "" {
		msg = DefaultFailure
	}
	return "", &Error{StatusCode: status, Message: msg}
}

// Health checks the endpoint's sibling /api/health route.
func (c *Client) Health(ctx context.Context) error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("parsing endpoint: %w", err)
	}
	u.Path = "/api/health"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	status, res, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK || res.Status != "healthy" {
		return &Error{StatusCode: status, Message: "service " + orDefault(res.Status, "unhealthy")}
	}
	return nil
}

// do sends req and decodes the JSON body.
func (c *Client) do(req *http.Request) (int, response, error) {
	var res response

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, res, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&res); err != nil {
		return resp.StatusCode, res, fmt.Errorf("%w: decoding response: %w", ErrUnavailable, err)
	}
	return resp.StatusCode, res, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
