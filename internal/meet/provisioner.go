package meet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrProvisioningUnavailable reports that the external meeting system timed
// out or errored. Callers are expected to fall back to a placeholder link
// rather than fail the scheduling operation.
var ErrProvisioningUnavailable = errors.New("meeting link provisioning unavailable")

// ProvisionTimeout bounds a single provisioning call.
const ProvisionTimeout = 5 * time.Second

const placeholderPrefix = "https://meet.invalid/pending-"

// Provisioner mints a join link for a session's time window.
type Provisioner interface {
	CreateMeeting(ctx context.Context, title string, start, end time.Time) (string, error)
}

// Placeholder returns the deterministic stand-in link used when provisioning
// fails. Downstream code detects it with IsPlaceholder before offering a join.
func Placeholder(sessionID string) string {
	return placeholderPrefix + sessionID
}

func IsPlaceholder(link string) bool {
	return len(link) >= len(placeholderPrefix) && link[:len(placeholderPrefix)] == placeholderPrefix
}

// HTTPProvisioner calls a calendar-style HTTP API that creates a conference
// and returns its join URL.
type HTTPProvisioner struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvisioner(baseURL, apiKey string) *HTTPProvisioner {
	return &HTTPProvisioner{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: ProvisionTimeout},
	}
}

type createMeetingRequest struct {
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type createMeetingResponse struct {
	JoinURL string `json:"join_url"`
}

func (p *HTTPProvisioner) CreateMeeting(ctx context.Context, title string, start, end time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ProvisionTimeout)
	defer cancel()

	body, err := json.Marshal(createMeetingRequest{Summary: title, Start: start, End: end})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/meetings", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvisioningUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: unexpected status %d", ErrProvisioningUnavailable, resp.StatusCode)
	}

	var decoded createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvisioningUnavailable, err)
	}
	if decoded.JoinURL == "" {
		return "", fmt.Errorf("%w: empty join URL", ErrProvisioningUnavailable)
	}

	return decoded.JoinURL, nil
}

// StubProvisioner returns synthetic links without any network call.
// Used in development mode when no provisioner endpoint is configured.
type StubProvisioner struct{}

func (StubProvisioner) CreateMeeting(_ context.Context, title string, _, _ time.Time) (string, error) {
	return fmt.Sprintf("https://meet.example.com/mock-%d", time.Now().UnixNano()), nil
}
