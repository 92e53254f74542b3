package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vetsuite/clinic-crm/pkg/logging"
)

const (
	defaultBaseURL    = "https://services.leadconnectorhq.com"
	defaultTimeout    = 5 * time.Second
	apiVersionHeader  = "2021-07-28"
	maxErrorBodyBytes = 300
)

// Client talks to the LeadConnector-compatible CRM REST API.
type Client struct {
	baseURL    string
	apiKey     string
	locationID string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a CRM client. An empty baseURL falls back to the hosted
// API endpoint.
func NewClient(baseURL, apiKey, locationID string, timeout time.Duration, logger *logging.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		locationID: locationID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UpsertContact creates or updates the owner contact carrying the pet's
// profile in custom fields.
func (c *Client) UpsertContact(ctx context.Context, req ContactRequest) (*Contact, error) {
	if req.LocationID == "" {
		req.LocationID = c.locationID
	}
	var contact Contact
	if err := c.post(ctx, "/contacts/", req, &contact); err != nil {
		return nil, err
	}
	c.logger.Debug("CRM contact upserted", "contact_id", contact.ID, "email", req.Email)
	return &contact, nil
}

// CreateAppointment mirrors a booked appointment onto the contact's calendar.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*CRMAppointment, error) {
	var appt CRMAppointment
	if err := c.post(ctx, "/appointments/", req, &appt); err != nil {
		return nil, err
	}
	c.logger.Debug("CRM appointment created", "crm_appointment_id", appt.ID)
	return &appt, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if strings.TrimSpace(c.apiKey) == "" {
		return fmt.Errorf("crm: missing api key")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("crm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", apiVersionHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("crm: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		msg := string(respBody)
		if len(msg) > maxErrorBodyBytes {
			msg = msg[:maxErrorBodyBytes]
		}
		return fmt.Errorf("crm: status %d: %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("crm: unmarshal response: %w", err)
		}
	}
	return nil
}
