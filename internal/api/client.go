// Package api is the typed client for the remote commerce API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// CorrelationIDHeader carries the per-request correlation id.
const CorrelationIDHeader = "X-Correlation-ID"

const maxBodyBytes = 4 << 20

// Doer sends one HTTP request. *httpclient.Client and
// *httpclient.CircuitBreakerClient both satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the commerce API. It holds no session state: every
// authenticated call takes the bearer token explicitly.
type Client struct {
	baseURL string
	doer    Doer
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8082/api/v1".
func NewClient(baseURL string, doer Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		tracer:  tracing.Tracer("storefront/api"),
		logger:  logger,
	}
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CircuitOpenFallback turns a rejected call on an open breaker into a
// NetworkFailure, so callers see one failure kind for an unreachable API.
func CircuitOpenFallback(_ context.Context, err error) (*http.Response, error) {
	return nil, apperrors.NetworkFailure(err)
}

type request struct {
	name   string
	method string
	path   string
	query  url.Values
	token  string
	auth   bool
	body   any
}

// send performs req and decodes a 2xx JSON body into T. Non-2xx responses are
// translated by httpclient.ParseResponseError.
func send[T any](ctx context.Context, c *Client, req request) (out T, err error) {
	if req.auth && strings.TrimSpace(req.token) == "" {
		err = apperrors.Unauthenticated("Protected route, Oauth2 Bearer token not found")
		recordOutcome(req.name, err)
		return out, err
	}

	if logger.CorrelationIDFromContext(ctx) == "" {
		ctx = logger.WithCorrelationID(ctx, uuid.New().String())
	}

	ctx, span := tracing.StartClientSpan(ctx, c.tracer, req.name, req.method, req.path)
	defer func() {
		tracing.EndSpan(span, err)
		recordOutcome(req.name, err)
	}()

	log := logger.WithContext(ctx, c.logger)

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return out, apperrors.Internal(err)
	}

	resp, err := c.doer.Do(ctx, httpReq)
	if err != nil {
		log.WarnContext(ctx, "commerce API call failed",
			slog.String("call", req.name),
			slog.String("error", err.Error()),
		)
		if apperrors.KindOf(err) == apperrors.KindNetwork {
			return out, err
		}
		return out, apperrors.NetworkFailure(err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		err = httpclient.ParseResponseError(resp, req.name)
		log.InfoContext(ctx, "commerce API call rejected",
			slog.String("call", req.name),
			slog.Int("status", resp.StatusCode),
			slog.String("kind", string(apperrors.KindOf(err))),
		)
		return out, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return out, apperrors.NetworkFailure(fmt.Errorf("%s: read body: %w", req.name, err))
	}
	if err = json.Unmarshal(data, &out); err != nil {
		return out, apperrors.NetworkFailure(fmt.Errorf("%s: decode body: %w", req.name, err))
	}

	log.DebugContext(ctx, "commerce API call succeeded",
		slog.String("call", req.name),
		slog.Int("status", resp.StatusCode),
	)
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", req.name, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.name, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.auth {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	httpReq.Header.Set(CorrelationIDHeader, logger.CorrelationIDFromContext(ctx))
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

// IsCircuitOpen reports whether err came from a breaker that refused the call.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, httpclient.ErrCircuitOpen)
}
