package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// Client invokes the hosted email-sending functions. Sends are
// fire-and-forget from the caller's point of view: a failure is
// reported but nothing upstream is rolled back because of it.

const (
	stageNoticeFunction = "send-candidate-notification"
	customEmailFunction = "send-custom-email"
)

// StageChangeNotice is the payload for automatic stage-change notices.
// The function picks the template for the new stage itself.
type StageChangeNotice struct {
	CandidateName  string `json:"candidateName"`
	CandidateEmail string `json:"candidateEmail"`
	OldStage       string `json:"oldStage"`
	NewStage       string `json:"newStage"`
	JobTitle       string `json:"jobTitle"`
}

// ComposedEmail is the payload for emails whose subject and body were
// already rendered by the caller.
type ComposedEmail struct {
	To            string `json:"to"`
	Subject       string `json:"subject"`
	HTML          string `json:"html"`
	CandidateName string `json:"candidateName"`
	CandidateID   string `json:"candidateId"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	baseURL     string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SendStageChangeNotice(ctx context.Context, notice StageChangeNotice) error {
	return c.invoke(ctx, stageNoticeFunction, notice)
}

func (c *Client) SendComposed(ctx context.Context, email ComposedEmail) error {
	return c.invoke(ctx, customEmailFunction, email)
}

func (c *Client) invoke(ctx context.Context, function string, payload any) error {

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding payload: %w", err)
	}

	_, err = c.sendRequest(ctx, "POST", c.baseURL+"/"+function, bytes.NewReader(body))
	return err
}

func (c *Client) sendRequest(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
