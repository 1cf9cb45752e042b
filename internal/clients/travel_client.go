package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boundless-travel/internal/metrics"
	"boundless-travel/internal/models"
)

// ErrInvalidInviteCode the backend rejected an invite code
var ErrInvalidInviteCode = errors.New("invalid invite code")

// APIError non-2xx response of the bookkeeping backend
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("travel API error (status %d): %s", e.StatusCode, e.Body)
}

// TravelClient Boundless Travel bookkeeping API client; one round trip per call, no retries
type TravelClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTravelClient creates a new bookkeeping client
func NewTravelClient(baseURL string, timeout time.Duration) *TravelClient {
	return &TravelClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type accountRequest struct {
	Account string `json:"account"`
}

type inviteCodeCheckRequest struct {
	Account     string `json:"account"`
	InvitedCode string `json:"invitedCode"`
}

type inviteCodeCheckResponse struct {
	Valid   *bool  `json:"valid"`
	Message string `json:"message"`
}

type mintSignatureResponse struct {
	Signature string `json:"signature"`
}

// LoginOrCreate returns the travel record of account, creating it on first call
func (c *TravelClient) LoginOrCreate(ctx context.Context, account string) (*models.AccountTravelInfo, error) {
	var info models.AccountTravelInfo
	if err := c.doJSON(ctx, http.MethodPost, "/boundless-travel/login", accountRequest{Account: account}, &info); err != nil {
		return nil, fmt.Errorf("login %s: %w", account, err)
	}
	if info.Account == "" {
		info.Account = account
	}
	return &info, nil
}

// GetPreMintInfo fetches the parameters of a new mint attempt
func (c *TravelClient) GetPreMintInfo(ctx context.Context, account string) (*models.PreMintInfo, error) {
	var info models.PreMintInfo
	if err := c.doJSON(ctx, http.MethodPost, "/boundless-travel/pre-mint", accountRequest{Account: account}, &info); err != nil {
		return nil, fmt.Errorf("get pre-mint info %s: %w", account, err)
	}
	if info.SignHash == "" {
		return nil, fmt.Errorf("get pre-mint info %s: empty sign hash", account)
	}
	return &info, nil
}

// GetMintSignature looks the relay signature up; ready is false until the relayer has produced it
func (c *TravelClient) GetMintSignature(ctx context.Context, signHash string) (string, bool, error) {
	var resp mintSignatureResponse
	path := "/boundless-travel/mint-signature?hash=" + url.QueryEscape(signHash)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get mint signature: %w", err)
	}
	if resp.Signature == "" {
		return "", false, nil
	}
	return resp.Signature, true, nil
}

// CheckInviteCode validates code for account; returns ErrInvalidInviteCode when rejected
func (c *TravelClient) CheckInviteCode(ctx context.Context, account, code string) error {
	var resp inviteCodeCheckResponse
	err := c.doJSON(ctx, http.MethodPost, "/boundless-travel/invite-code/check", inviteCodeCheckRequest{
		Account:     account,
		InvitedCode: code,
	}, &resp)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return fmt.Errorf("%w: %s", ErrInvalidInviteCode, apiErr.Body)
	}
	if err != nil {
		return fmt.Errorf("check invite code: %w", err)
	}
	if resp.Valid != nil && !*resp.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidInviteCode, resp.Message)
	}
	return nil
}

// GetTravelSettings fetches campaign settings
func (c *TravelClient) GetTravelSettings(ctx context.Context) (*models.TravelSettings, error) {
	var settings models.TravelSettings
	if err := c.doJSON(ctx, http.MethodGet, "/boundless-travel/setting", nil, &settings); err != nil {
		return nil, fmt.Errorf("get travel settings: %w", err)
	}
	return &settings, nil
}

func (c *TravelClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	operation := path
	if i := strings.IndexByte(operation, '?'); i >= 0 {
		operation = operation[:i]
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TravelAPIRequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	metrics.TravelAPIRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
