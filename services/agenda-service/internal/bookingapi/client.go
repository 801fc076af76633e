// Package bookingapi reaches an external booking API as the agenda's appointment store.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/apptdesk/libs/httpx"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	clock   bizclock.Clock
}

func NewClient(baseURL, token string, clock bizclock.Clock) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:   strings.TrimSpace(token),
		clock:   clock,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
			Transport: otelhttp.NewTransport(&http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			}),
		},
	}
}

type appointmentDTO struct {
	ID                  string `json:"id"`
	StartsAt            string `json:"starts_at"`
	CustomerName        string `json:"customer_name"`
	CustomerPhone       string `json:"customer_phone"`
	CustomerEmail       string `json:"customer_email"`
	ServicePresentation string `json:"service_presentation"`
	InstructorName      string `json:"instructor_name"`
	Status              string `json:"status"`
}

func (d appointmentDTO) model() (model.Appointment, error) {
	at, err := time.Parse(time.RFC3339, d.StartsAt)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("bookingapi: appointment %s: invalid starts_at %q", d.ID, d.StartsAt)
	}
	return model.Appointment{
		ID:                  d.ID,
		StartsAt:            at,
		CustomerName:        d.CustomerName,
		CustomerPhone:       d.CustomerPhone,
		CustomerEmail:       d.CustomerEmail,
		ServicePresentation: d.ServicePresentation,
		InstructorName:      d.InstructorName,
		Status:              model.Status(d.Status),
	}, nil
}

type listResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

// ListToday fetches GET /api/v1/appointments?date=YYYY-MM-DD.
func (c *Client) ListToday(ctx context.Context, day time.Time) ([]model.Appointment, error) {
	u, err := url.Parse(c.BaseURL + "/api/v1/appointments")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("date", c.clock.DateString(day))
	u.RawQuery = q.Encode()

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, u.String(), nil, &resp); err != nil {
		return nil, err
	}
	items := make([]model.Appointment, 0, len(resp.Appointments))
	for _, d := range resp.Appointments {
		a, err := d.model()
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, nil
}

// UpdateStartTime sends PATCH /api/v1/appointments/{id} {"starts_at": RFC3339}.
func (c *Client) UpdateStartTime(ctx context.Context, id string, startsAt time.Time) (model.Appointment, error) {
	body := map[string]string{"starts_at": startsAt.Format(time.RFC3339)}
	var d appointmentDTO
	endpoint := c.BaseURL + "/api/v1/appointments/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, endpoint, body, &d); err != nil {
		return model.Appointment{}, err
	}
	if d.StartsAt == "" {
		// 204 or an empty body: the update persisted, the caller reloads for the rest.
		return model.Appointment{ID: id, StartsAt: startsAt}, nil
	}
	return d.model()
}

// Ping hits the API's readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.BaseURL+"/readyz", nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if id := httpx.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &model.RemoteError{Message: "booking api unreachable", Err: err}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		return &model.RemoteError{
			Message: strings.TrimSpace(apiErr.Error),
			Err:     fmt.Errorf("booking api %s %s: status %d", method, req.URL.Path, resp.StatusCode),
		}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("bookingapi: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
