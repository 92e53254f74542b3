package identity

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

	"github.com/vetsuite/clinic-crm/pkg/logging"
)

const defaultAdminTimeout = 10 * time.Second

// AccountMetadata is attached to provisioned accounts so the auth backend can
// issue tokens carrying role and pet ownership.
type AccountMetadata struct {
	Name      string   `json:"name"`
	Role      Role     `json:"role"`
	PetsOwned []string `json:"petsOwned"`
}

// AccountAPI is the subset of the identity backend's admin surface the
// provisioning flow needs.
type AccountAPI interface {
	FindAccount(ctx context.Context, email string) (string, error)
	CreateAccount(ctx context.Context, email, password string, meta AccountMetadata) (string, error)
	UpdateMetadata(ctx context.Context, accountID string, meta AccountMetadata) error
	IssueRecoveryLink(ctx context.Context, email string) (string, error)
}

// AdminClient talks to the hosted auth backend's admin API.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewAdminClient creates a client for the identity admin API.
func NewAdminClient(baseURL, serviceKey string, logger *logging.Logger) *AdminClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: defaultAdminTimeout},
		logger:     logger,
	}
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type adminUserList struct {
	Users []adminUser `json:"users"`
}

// FindAccount returns the account id registered for email, or empty string
// when no account exists.
func (c *AdminClient) FindAccount(ctx context.Context, email string) (string, error) {
	var out adminUserList
	path := "/auth/v1/admin/users?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	for _, u := range out.Users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}
	return "", nil
}

// CreateAccount provisions a confirmed account with a temporary password.
func (c *AdminClient) CreateAccount(ctx context.Context, email, password string, meta AccountMetadata) (string, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
		"user_metadata": meta,
	}
	var out adminUser
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("identity: create account returned empty id")
	}
	return out.ID, nil
}

// UpdateMetadata replaces the account's user metadata.
func (c *AdminClient) UpdateMetadata(ctx context.Context, accountID string, meta AccountMetadata) error {
	body := map[string]any{"user_metadata": meta}
	return c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(accountID), body, nil)
}

type recoveryLinkResponse struct {
	ActionLink string `json:"action_link"`
}

// IssueRecoveryLink asks the auth backend for a magic sign-in link.
func (c *AdminClient) IssueRecoveryLink(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"type":  "magiclink",
		"email": email,
	}
	var out recoveryLinkResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/generate_link", body, &out); err != nil {
		return "", err
	}
	return out.ActionLink, nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body any, out any) error {
	if c.serviceKey == "" {
		return fmt.Errorf("identity: missing admin service key")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("identity: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("identity: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: admin request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("identity: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return fmt.Errorf("identity: admin api status %d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("identity: unmarshal response: %w", err)
	}
	return nil
}
