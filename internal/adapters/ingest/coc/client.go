// Package coc provides a resilient Clash of Clans REST v1 client for the monitor.
// Every fetch is classified into one of three outcomes: OK, Maintenance
// (the API's scheduled downtime, an expected state), or Transient (anything
// else). Nothing is ever fatal; the next poll retries
package coc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	perr "warwatch/internal/platform/errors"
	"warwatch/internal/platform/logger"
)

const (
	baseURLDefault = "https://api.clashofclans.com/v1"
	defaultTimeout = 10 * time.Second
	defaultUA      = "warwatch-monitor"

	// defaultBudget is assumed until the first response reports a real value
	defaultBudget = 30

	defaultLowWater = 5
	defaultCooldown = 10 * time.Second
)

// Outcome classifies one fetch
type Outcome int

const (
	// OutcomeOK means a parsed, validated payload was returned
	OutcomeOK Outcome = iota
	// OutcomeMaintenance means the upstream signaled scheduled unavailability (503)
	OutcomeMaintenance
	// OutcomeTransient means a retryable failure: network, non-2xx, malformed body
	OutcomeTransient
)

// String implements fmt.Stringer for log fields
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMaintenance:
		return "maintenance"
	default:
		return "transient"
	}
}

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Token is the bearer credential for the API
	Token string

	// RateLowWater is the remaining-request budget at or below which the
	// next call is preceded by a cooldown (advisory, never skips a call)
	RateLowWater int
	RateCooldown time.Duration
}

// Client is a minimal CoC REST client with advisory rate throttling
type Client struct {
	http   *http.Client
	opts   Options
	budget atomic.Int64
	log    logger.Logger
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RateLowWater <= 0 {
		o.RateLowWater = defaultLowWater
	}
	if o.RateCooldown <= 0 {
		o.RateCooldown = defaultCooldown
	}
	c := &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("coc"),
		now:   time.Now,
		sleep: time.Sleep,
	}
	c.budget.Store(defaultBudget)
	return c
}

// Do issues a GET with auth headers and advisory throttling.
// Callers own the response body
func (c *Client) Do(ctx context.Context, path string) (*http.Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Advisory cooldown: delay, never skip
	if rem := c.budget.Load(); rem <= int64(c.opts.RateLowWater) {
		c.log.Warn().Int64("rate_remaining", rem).Dur("cooldown", c.opts.RateCooldown).
			Msg("approaching rate limit, cooling down")
		c.sleep(c.opts.RateCooldown)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "coc new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "coc do failed")
	}

	if rem, ok := parseRateRemaining(resp.Header); ok {
		c.budget.Store(int64(rem))
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Int64("rate_remaining", c.budget.Load()).
		Msg("coc http response")

	return resp, nil
}

// getJSON fetches path and decodes into out, classifying the result.
// The returned error carries detail for transient outcomes and is nil for
// OK and Maintenance
func (c *Client) getJSON(ctx context.Context, path string, out any) (Outcome, error) {
	resp, err := c.Do(ctx, path)
	if err != nil {
		return OutcomeTransient, err
	}
	defer func() {
		if cerr := drainAndClose(resp.Body); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("coc close body failed")
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode below
	case resp.StatusCode == http.StatusServiceUnavailable:
		// scheduled maintenance, a first-class expected state
		return OutcomeMaintenance, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return OutcomeTransient, perr.Newf(perr.ErrorCodeTooManyRequests, "coc rate limited on %s", path)
	case resp.StatusCode == http.StatusForbidden:
		return OutcomeTransient, perr.Unauthorizedf("coc rejected credentials on %s", path)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return OutcomeTransient, perr.Unavailablef("coc unexpected status %d on %s body %s", resp.StatusCode, path, string(body))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return OutcomeTransient, perr.Wrapf(err, perr.ErrorCodeUnavailable, "coc read body failed")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return OutcomeTransient, perr.Wrapf(err, perr.ErrorCodeJSON, "coc malformed body on %s", path)
	}
	if err := validate.Struct(out); err != nil {
		return OutcomeTransient, perr.Wrapf(err, perr.ErrorCodeValidation, "coc invalid payload on %s", path)
	}
	return OutcomeOK, nil
}

// RateRemaining reports the last observed request budget
func (c *Client) RateRemaining() int { return int(c.budget.Load()) }
