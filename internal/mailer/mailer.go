// Package mailer delivers contact and booking-inquiry messages through an
// EmailJS-compatible HTTP API
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aethra/haven/internal/config"
	apperrors "github.com/aethra/haven/internal/errors"
)

// ContactMessage is the public contact form
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// BookingInquiry is the "request a stay" form on room pages
type BookingInquiry struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	RoomType string `json:"room_type" validate:"omitempty,max=150"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests   int    `json:"guests" validate:"required,min=1,max=20"`
	Message  string `json:"message" validate:"omitempty,max=5000"`
}

// Sender is what the HTTP layer needs from the mailer
type Sender interface {
	Configured() bool
	SendContact(ctx context.Context, msg ContactMessage) error
	SendInquiry(ctx context.Context, inq BookingInquiry) error
}

// Client posts template parameters to the mail API
type Client struct {
	cfg      config.MailConfig
	http     *http.Client
	validate *validator.Validate
}

// New creates a mail client
func New(cfg config.MailConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}, validate: v}
}

// Configured reports whether messages can be sent
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// SendContact validates and sends a contact message
func (c *Client) SendContact(ctx context.Context, msg ContactMessage) error {
	if err := c.check(msg); err != nil {
		return err
	}
	subject := msg.Subject
	if subject == "" {
		subject = "Website enquiry"
	}
	return c.send(ctx, map[string]string{
		"kind":       "contact",
		"from_name":  msg.Name,
		"from_email": msg.Email,
		"reply_to":   msg.Email,
		"phone":      msg.Phone,
		"subject":    subject,
		"message":    msg.Message,
	})
}

// SendInquiry validates and sends a booking inquiry
func (c *Client) SendInquiry(ctx context.Context, inq BookingInquiry) error {
	if err := c.check(inq); err != nil {
		return err
	}
	if inq.CheckOut <= inq.CheckIn {
		return apperrors.NewValidationError("check_out", "Check-out must be after check-in")
	}
	return c.send(ctx, map[string]string{
		"kind":       "booking_inquiry",
		"from_name":  inq.Name,
		"from_email": inq.Email,
		"reply_to":   inq.Email,
		"phone":      inq.Phone,
		"subject":    fmt.Sprintf("Booking inquiry: %s to %s", inq.CheckIn, inq.CheckOut),
		"room_type":  inq.RoomType,
		"check_in":   inq.CheckIn,
		"check_out":  inq.CheckOut,
		"guests":     fmt.Sprint(inq.Guests),
		"message":    inq.Message,
	})
}

// check runs struct validation and turns the first failure into a field error
func (c *Client) check(payload interface{}) error {
	err := c.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewBadRequestError(err.Error())
	}
	fe := verrs[0]
	return apperrors.NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	label = strings.ToUpper(label[:1]) + label[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *Client) send(ctx context.Context, params map[string]string) error {
	if !c.cfg.Configured() {
		return apperrors.NewSetupRequiredError("email delivery", c.cfg.Fallback)
	}
	if c.cfg.ToEmail != "" {
		params["to_email"] = c.cfg.ToEmail
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     c.cfg.TemplateID,
		UserID:         c.cfg.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("mail: send failed: %v", err)
		return apperrors.NewInternalError(fmt.Errorf("mail service unreachable: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("mail: service answered %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		return apperrors.NewInternalError(fmt.Errorf("mail service answered %d", resp.StatusCode))
	}
	return nil
}
