// Package numverify is a client for the numverify phone validation API.
package numverify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 1 << 20

var ErrUpstream = errors.New("numverify: upstream error")

// APIError is the error payload numverify returns with HTTP 200.
type APIError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("numverify: %s (%d): %s", e.Type, e.Code, e.Info)
}

func (e *APIError) Unwrap() error { return ErrUpstream }

type response struct {
	Success *bool     `json:"success"`
	Error   *APIError `json:"error"`

	Valid               bool   `json:"valid"`
	Number              string `json:"number"`
	LocalFormat         string `json:"local_format"`
	InternationalFormat string `json:"international_format"`
	CountryPrefix       string `json:"country_prefix"`
	CountryCode         string `json:"country_code"`
	CountryName         string `json:"country_name"`
	Location            string `json:"location"`
	Carrier             string `json:"carrier"`
	LineType            string `json:"line_type"`
}

type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{}, // per-call deadline comes from ctx
	}
}

// Lookup asks the provider about phoneNumber. Transport failures, non-2xx
// statuses and provider error payloads are all returned as errors.
func (c *Client) Lookup(ctx context.Context, phoneNumber, countryCode string) (domain.ValidationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("number", phoneNumber)
	q.Set("country_code", countryCode)
	q.Set("format", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/validate?"+q.Encode(), nil)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the access key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return domain.ValidationResult{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ValidationResult{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Error != nil {
		return domain.ValidationResult{}, r.Error
	}
	if r.Success != nil && !*r.Success {
		return domain.ValidationResult{}, fmt.Errorf("%w: success=false", ErrUpstream)
	}

	return domain.ValidationResult{
		Valid:               r.Valid,
		Number:              r.Number,
		LocalFormat:         r.LocalFormat,
		InternationalFormat: r.InternationalFormat,
		CountryPrefix:       r.CountryPrefix,
		CountryCode:         r.CountryCode,
		CountryName:         r.CountryName,
		Location:            r.Location,
		Carrier:             r.Carrier,
		LineType:            r.LineType,
	}, nil
}
