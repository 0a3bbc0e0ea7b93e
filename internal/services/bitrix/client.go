// Package bitrix implements the client for the CRM's inbound webhook REST API.
package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bitrix-lead-relay/internal/models"
)

// methodAddLead is the REST method appended to the webhook base URL.
const methodAddLead = "crm.lead.add"

// maxResponseBytes caps how much of an upstream response is read.
const maxResponseBytes = 1 << 20

// Client calls the CRM REST API through an inbound webhook URL. The base
// URL embeds the account's API token, so transport errors that quote the
// URL belong in server-side logs and must never reach webhook callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a CRM client. The timeout bounds every upstream call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LeadResult carries the identifier the CRM assigned to the new lead plus
// the raw response payload for echo-back to the webhook caller.
type LeadResult struct {
	ID  int64
	Raw map[string]interface{}
}

// APIError is an application-level error the CRM returned in a response
// body. Code and Description come from the CRM itself, so the message is
// safe to show to callers.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("upstream error %s", e.Code)
	}
	return fmt.Sprintf("upstream error %s: %s", e.Code, e.Description)
}

// AddLead submits a mapped field record as a new lead. HTTP-level failures,
// non-2xx statuses and application-level error bodies are all terminal;
// the relay makes exactly one attempt per inbound webhook.
func (c *Client) AddLead(ctx context.Context, fields map[string]interface{}) (*LeadResult, error) {
	if c.baseURL == "" {
		return nil, models.ErrUpstreamNotSet
	}

	body, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lead fields: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(methodAddLead), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		if !is2xx(resp.StatusCode) {
			return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	// The CRM reports application errors in the body, sometimes under a
	// 200 status, so this check comes before the status check.
	if code := stringValue(payload["error"]); code != "" {
		return nil, &APIError{Code: code, Description: stringValue(payload["error_description"])}
	}
	if !is2xx(resp.StatusCode) {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	result := &LeadResult{Raw: payload}
	if id, ok := payload["result"].(float64); ok {
		result.ID = int64(id)
	}

	return result, nil
}

// methodURL joins the base URL and a method name with exactly one slash.
func (c *Client) methodURL(method string) string {
	if strings.HasSuffix(c.baseURL, "/") {
		return c.baseURL + method
	}
	return c.baseURL + "/" + method
}

// stringValue renders the loosely-typed error fields the CRM returns.
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func is2xx(status int) bool {
	return status >= 200 && status <= 299
}
