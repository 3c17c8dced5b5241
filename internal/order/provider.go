package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// FetchError is returned when the upstream order data cannot be retrieved.
// Status is the HTTP status code of the response, or 0 when no response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

// Error describes the failed request, including the status when a response arrived.
func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch order data from %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch order data from %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Provider retrieves order records from the upstream data service with a single GET request.
// Every call re-fetches the data; nothing is cached between calls.
type Provider struct {
	url     string       // address of the endpoint returning the JSON array of orders
	client  *http.Client // client with timeout and, optionally, bearer token authentication
	maxBody int64        // largest accepted response body in bytes
}

// DefaultMaxBody is the response size limit used when none is configured.
const DefaultMaxBody int64 = 32 << 20

// Fetch downloads and decodes the current order records.
//
// Transport failures, non-200 responses and undecodable payloads are returned as *FetchError.
// Validation failures of the decoded batch (*MissingFieldsError, ErrInvalidRecord) are returned as is.
func (p *Provider) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: p.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: p.url, Status: resp.StatusCode, Err: fmt.Errorf("unexpected response %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody+1))
	if err != nil {
		return nil, &FetchError{URL: p.url, Status: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > p.maxBody {
		return nil, &FetchError{URL: p.url, Status: resp.StatusCode, Err: fmt.Errorf("response body exceeds %d bytes", p.maxBody)}
	}

	records, err := Decode(body)
	if err != nil {
		var missing *MissingFieldsError
		if errors.As(err, &missing) || errors.Is(err, ErrInvalidRecord) {
			return nil, err
		}
		return nil, &FetchError{URL: p.url, Status: resp.StatusCode, Err: err}
	}
	return records, nil
}

// NewProvider creates a Provider for the given endpoint.
// When token is not empty every request carries it as a bearer token.
// Responses larger than maxBody bytes fail with *FetchError; a non-positive
// maxBody selects DefaultMaxBody.
func NewProvider(url string, timeout time.Duration, token string, maxBody int64) *Provider {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	client := &http.Client{Timeout: timeout}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			TokenType:   "Bearer",
			AccessToken: token,
		})
		client = oauth2.NewClient(ctx, ts)
		client.Timeout = timeout
	}

	return &Provider{
		url:     url,
		client:  client,
		maxBody: maxBody,
	}
}
