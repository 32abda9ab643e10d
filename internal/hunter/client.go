// Package hunter resolves a likely email address for a person given their name
// and the canonical domain of their organization.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opencrew/pitchboard/internal/errors"
)

// State classifies the outcome of a resolution. Not-found is a valid negative
// result, failed is a transport or service fault.
type State string

const (
	StateUnresolved State = ""
	StateFound      State = "found"
	StateNotFound   State = "not_found"
	StateFailed     State = "failed"
)

// Resolution is the normalized outcome of an email lookup.
type Resolution struct {
	State   State  `json:"state"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Display renders the resolution the way the dashboard shows it.
func (r Resolution) Display() string {
	switch r.State {
	case StateFound:
		return r.Email
	case StateNotFound:
		return "Not Found"
	case StateFailed:
		return fmt.Sprintf("Error: %s", r.Message)
	default:
		return ""
	}
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.With("source", "hunter.Client"),
	}
}

type finderResponse struct {
	Data struct {
		Email string `json:"email"`
	} `json:"data"`
	Errors []struct {
		Details string `json:"details"`
	} `json:"errors"`
}

// Resolve looks up an email address for the named investor at the given domain.
// All failures are folded into a Resolution so the caller can surface the
// message verbatim; Resolve never retries.
func (c *Client) Resolve(ctx context.Context, name, domain string) Resolution {
	names := strings.Fields(name)
	if len(names) == 0 || domain == "" {
		return Resolution{State: StateFailed, Message: "name and domain are required"}
	}
	firstName := names[0]
	lastName := names[len(names)-1]

	query := url.Values{}
	query.Set("domain", domain)
	query.Set("first_name", firstName)
	query.Set("last_name", lastName)
	query.Set("api_key", c.apiKey)
	endpoint := fmt.Sprintf("%s/v2/email-finder?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Resolution{State: StateFailed, Message: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Resolution{State: StateFailed, Message: err.Error()}
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelError, "close email finder response",
				errors.SlogError(errors.Wrap(err, "close response body")))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Resolution{State: StateFailed, Message: err.Error()}
	}

	var parsed finderResponse
	if err = json.Unmarshal(body, &parsed); err != nil && resp.StatusCode < http.StatusBadRequest {
		return Resolution{State: StateFailed, Message: err.Error()}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		message := resp.Status
		if len(parsed.Errors) > 0 && parsed.Errors[0].Details != "" {
			message = parsed.Errors[0].Details
		}
		return Resolution{State: StateFailed, Message: message}
	}

	if parsed.Data.Email == "" {
		return Resolution{State: StateNotFound}
	}
	return Resolution{State: StateFound, Email: parsed.Data.Email}
}
