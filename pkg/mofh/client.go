package mofh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/Lebyy/mofh-go/pkg/errors"
	pkghttp "github.com/Lebyy/mofh-go/pkg/http"
	"github.com/Lebyy/mofh-go/pkg/observability"
	"github.com/Lebyy/mofh-go/pkg/ports"
)

// DefaultBaseURL is the reseller XML API endpoint of the MyOwnFreeHost panel
const DefaultBaseURL = "https://panel.myownfreehost.net/xml-api"

// Panel API operations. Each one maps to "<operation>.php" under the base URL.
const (
	OpCreateAccount    = "createacct"
	OpSuspendAccount   = "suspendacct"
	OpUnsuspendAccount = "unsuspendacct"
	OpChangePassword   = "passwd"
	OpCheckAvailable   = "checkavailable"
	OpGetUserDomains   = "getuserdomains"
	OpGetDomainUser    = "getdomainuser"
)

// Config holds the reseller API credentials and the panel location
type Config struct {
	Username string // API username from the reseller panel
	Password string // API password (key) from the reseller panel
	BaseURL  string // Optional, defaults to DefaultBaseURL
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default transport
func WithHTTPClient(httpClient ports.HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request/response diagnostics
func WithLogger(logger ports.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every call in the given Prometheus collectors
func WithMetrics(metrics *observability.PanelMetrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// Client talks to the panel API. It is immutable after construction and
// safe for concurrent use.
type Client struct {
	username   string
	password   string
	baseURL    string
	httpClient ports.HTTPClient
	logger     ports.Logger
	metrics    *observability.PanelMetrics
	validate   *validator.Validate
}

// NewClient creates a panel client. Username and Password are required.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Username == "" {
		return nil, pkgerrors.NewValidationError("username", "is a required option")
	}
	if cfg.Password == "" {
		return nil, pkgerrors.NewValidationError("password", "is a required option")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		username:   cfg.Username,
		password:   cfg.Password,
		baseURL:    baseURL,
		httpClient: pkghttp.NewHTTPClient(pkghttp.PanelClientConfig(), pkghttp.DefaultTimeout),
		logger:     ports.NopLogger{},
		validate:   newValidator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = ports.NopLogger{}
	}
	if c.httpClient == nil {
		return nil, fmt.Errorf("http client must not be nil")
	}

	return c, nil
}

// BaseURL returns the panel endpoint this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// withAPIKey adds the api_user/api_key pair expected by the plain-text and
// JSON endpoints.
func (c *Client) withAPIKey(query url.Values) url.Values {
	query.Set("api_user", c.username)
	query.Set("api_key", c.password)
	return query
}

// post sends one POST to {baseURL}/{op}.php with query as the query string
// and returns the untouched response body.
func (c *Client) post(ctx context.Context, op string, query url.Values) (string, error) {
	endpoint := c.baseURL + "/" + op + ".php"
	requestID := uuid.NewString()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	httpReq.SetBasicAuth(c.username, c.password)
	httpReq.Header.Set("X-Request-Id", requestID)

	c.logger.Debug("sending panel request",
		ports.String("operation", op),
		ports.String("endpoint", endpoint),
		ports.String("request_id", requestID),
	)

	done := c.metrics.StartRequest(op)
	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		done()
		c.logger.Debug("panel transport error",
			ports.String("operation", op),
			ports.String("request_id", requestID),
			ports.Duration("elapsed", time.Since(startTime)),
		)
		// *url.Error prints the full URL, which holds api_key on domain ops
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = fmt.Errorf("%s %s: %w", urlErr.Op, endpoint, urlErr.Err)
		}
		return "", &pkgerrors.TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	done()
	if err != nil {
		return "", &pkgerrors.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("received panel response",
		ports.String("operation", op),
		ports.String("request_id", requestID),
		ports.Int("status_code", httpResp.StatusCode),
		ports.Duration("elapsed", time.Since(startTime)),
		ports.Int("body_length", len(body)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", &pkgerrors.TransportError{
			Op:          op,
			StatusCode:  httpResp.StatusCode,
			RawResponse: string(body),
		}
	}

	return string(body), nil
}

// finish logs and counts the outcome of one public call
func (c *Client) finish(op string, err error) {
	category := pkgerrors.CategoryOf(err)

	switch category {
	case pkgerrors.CategoryNone:
		c.metrics.RecordOutcome(op, observability.OutcomeSuccess)
		c.logger.Info("panel request succeeded", ports.String("operation", op))
	case pkgerrors.CategoryValidation:
		c.metrics.RecordOutcome(op, observability.OutcomeInvalid)
		c.logger.Debug("panel request rejected before sending", ports.String("operation", op), ports.Err(err))
	case pkgerrors.CategoryProtocol:
		c.metrics.RecordOutcome(op, observability.OutcomeProtocol)
		c.logger.Warn("unexpected panel response", ports.String("operation", op), ports.Err(err))
	case pkgerrors.CategoryRemote:
		c.metrics.RecordOutcome(op, observability.OutcomeRemote)
		c.logger.Warn("panel reported failure", ports.String("operation", op), ports.Err(err))
	case pkgerrors.CategoryTransport:
		c.metrics.RecordOutcome(op, observability.OutcomeTransport)
		c.logger.Error("panel request failed", ports.String("operation", op), ports.Err(err))
	default:
		c.metrics.RecordOutcome(op, observability.OutcomeUnknown)
		c.logger.Error("panel request failed", ports.String("operation", op), ports.Err(err))
	}
}
