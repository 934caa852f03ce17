package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// toolingClient issues Tooling API calls against one org instance.
type toolingClient struct {
	baseURL string
	client  *http.Client
}

// newToolingClient returns a client whose requests carry the bearer token.
// base supplies the underlying transport and timeout.
func newToolingClient(ctx context.Context, base *http.Client, instanceURL, apiVersion, token string) *toolingClient {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	client.Timeout = base.Timeout

	return &toolingClient{
		baseURL: fmt.Sprintf("%s/services/data/v%s/tooling", strings.TrimRight(instanceURL, "/"), apiVersion),
		client:  client,
	}
}

type queryResponse[T any] struct {
	TotalSize int `json:"totalSize"`
	Records   []T `json:"records"`
}

// apiError is one element of the error array Salesforce returns on failure.
type apiError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// query runs a SOQL query and returns its records. An absent records field
// yields an empty slice.
func query[T any](ctx context.Context, c *toolingClient, soql string) ([]T, error) {
	endpoint := c.baseURL + "/query?q=" + url.QueryEscape(soql)

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resp queryResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return resp.Records, nil
}

// patch sends a partial update to one sObject record.
func (c *toolingClient) patch(ctx context.Context, sobject, id string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s update: %w", sobject, err)
	}

	endpoint := fmt.Sprintf("%s/sobjects/%s/%s", c.baseURL, sobject, url.PathEscape(id))
	_, err = c.do(ctx, http.MethodPatch, endpoint, data)
	return err
}

func (c *toolingClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("method", method).Str("url", endpoint).Msg("tooling api request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tooling request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tooling response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tooling api returned status %d: %s", resp.StatusCode, describeError(body))
	}
	return body, nil
}

// describeError renders a Salesforce error body, falling back to the raw text.
func describeError(body []byte) string {
	var errs []apiError
	if err := json.Unmarshal(body, &errs); err == nil && len(errs) > 0 {
		parts := make([]string, 0, len(errs))
		for _, e := range errs {
			if e.ErrorCode != "" {
				parts = append(parts, e.ErrorCode+": "+e.Message)
			} else {
				parts = append(parts, e.Message)
			}
		}
		return strings.Join(parts, "; ")
	}
	return strings.TrimSpace(string(body))
}

// quote renders s as a SOQL string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
