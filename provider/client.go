package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/outlet-payroll/payroll"
)

const (
	DefaultTimeout     = 25 * time.Second
	DefaultConcurrency = 4

	// maxErrorBody caps how much of an error response is kept in the error.
	maxErrorBody = 512
)

// Client talks to the upstream shift report API. It implements
// payroll.ShiftSource.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client

	zone        payroll.Zone
	concurrency int
	logger      *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTP = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTP.Timeout = d }
}

// WithZone sets the location day keys are interpreted in by FetchRange.
func WithZone(z payroll.Zone) Option {
	return func(c *Client) { c.zone = z }
}

// WithConcurrency bounds the number of in-flight day requests in FetchRange.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		zone:        payroll.NewZone(time.UTC),
		concurrency: DefaultConcurrency,
		logger:      zap.L().Named("provider.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchDay fetches one operating day. Any failure is a *payroll.DataFetchError.
func (c *Client) FetchDay(ctx context.Context, brandID, outletID, day string) (payroll.ShiftContext, error) {
	source := brandID + "/" + outletID + "/" + day
	fail := func(status int, err error) (payroll.ShiftContext, error) {
		return payroll.ShiftContext{}, &payroll.DataFetchError{Source: source, Status: status, Err: err}
	}

	u, err := url.Parse(fmt.Sprintf("%s/brands/%s/outlets/%s/shift-report",
		c.BaseURL, url.PathEscape(brandID), url.PathEscape(outletID)))
	if err != nil {
		return fail(0, err)
	}
	q := u.Query()
	q.Set("date", day)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fail(0, err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger.Warn("shift report request failed", zap.String("source", source), zap.Error(err))
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error = fmt.Errorf("body=%s", strings.TrimSpace(string(b)))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			cause = errors.Join(payroll.ErrUnauthorized, cause)
		}
		c.logger.Warn("shift report rejected",
			zap.String("source", source),
			zap.Int("status", resp.StatusCode))
		return fail(resp.StatusCode, cause)
	}

	shift, err := Decode(resp.Body, brandID, outletID)
	if err != nil {
		return fail(resp.StatusCode, err)
	}

	c.logger.Debug("shift report fetched",
		zap.String("source", source),
		zap.Int("punches", len(shift.Punches)),
		zap.Int("orders", len(shift.Orders)),
		zap.Duration("took", time.Since(start)))
	return shift, nil
}

// FetchRange fetches every day in the scope concurrently and returns them in
// day order. The first failure cancels the rest; no partial range is returned.
func (c *Client) FetchRange(ctx context.Context, scope payroll.Scope) ([]payroll.ShiftContext, error) {
	if scope.BrandID == "" || scope.OutletID == "" {
		return nil, fmt.Errorf("fetch range: brand and outlet are required")
	}
	days, err := c.zone.Days(scope.From, scope.To)
	if err != nil {
		return nil, fmt.Errorf("fetch range: %w", err)
	}

	out := make([]payroll.ShiftContext, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			shift, err := c.FetchDay(gctx, scope.BrandID, scope.OutletID, day)
			if err != nil {
				return err
			}
			out[i] = shift
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadShifts implements payroll.ShiftSource.
func (c *Client) LoadShifts(ctx context.Context, scope payroll.Scope) ([]payroll.ShiftContext, error) {
	return c.FetchRange(ctx, scope)
}
