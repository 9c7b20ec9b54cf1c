package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/obs"
)

const commandPath = "/agent/command"

// actionGenerateTemplate is the only MCP command this backend issues.
const actionGenerateTemplate = "generate_template"

// Options configures the MCP automation server client.
type Options struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the MCP automation server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Payload is the generate_template command payload forwarded to the MCP
// server. Arbitrary keys are allowed; the server ignores what it does not
// understand.
type Payload map[string]any

// Design is the normalized result of a generate_template command.
type Design struct {
	URL string
	ID  string
}

type commandRequest struct {
	Action  string  `json:"action"`
	Payload Payload `json:"payload"`
}

// commandResponse covers the field names observed across MCP server
// builds. The response shape has not been stable, so the URL and id are
// taken from the first populated alternative.
type commandResponse struct {
	DesignURL   string `json:"design_url"`
	DesignURLCC string `json:"designUrl"`
	URL         string `json:"url"`
	EditURL     string `json:"edit_url"`
	EditURLCC   string `json:"editUrl"`
	DesignID    string `json:"design_id"`
	DesignIDCC  string `json:"designId"`
	ID          string `json:"id"`
	Error       string `json:"error"`
	Message     string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:4000"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GenerateTemplate issues one generate_template command and returns the
// normalized design along with the raw upstream body. The raw body is
// returned on failure too so callers can echo upstream diagnostics. A
// single attempt is made; there are no retries.
func (c *Client) GenerateTemplate(ctx context.Context, payload Payload) (*Design, []byte, error) {
	body, err := json.Marshal(commandRequest{Action: actionGenerateTemplate, Payload: payload})
	if err != nil {
		return nil, nil, fmt.Errorf("mcp: encode request: %w", err)
	}

	endpoint := c.baseURL + commandPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("mcp: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		obs.ProxyRequests.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("mcp: call %s: %v: %w", endpoint, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		obs.ProxyRequests.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("mcp: read response: %v: %w", err, domain.ErrUpstream)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		obs.ProxyRequests.WithLabelValues("upstream_error").Inc()
		c.logger.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("mcp command rejected")
		return nil, raw, fmt.Errorf("mcp: status %d: %s: %w", resp.StatusCode, upstreamMessage(raw), domain.ErrUpstream)
	}

	var decoded commandResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		obs.ProxyRequests.WithLabelValues("bad_response").Inc()
		return nil, raw, fmt.Errorf("mcp: decode response: %v: %w", err, domain.ErrUpstream)
	}

	design := &Design{
		URL: firstNonEmpty(decoded.DesignURL, decoded.DesignURLCC, decoded.URL, decoded.EditURL, decoded.EditURLCC),
		ID:  firstNonEmpty(decoded.DesignID, decoded.DesignIDCC, decoded.ID),
	}
	if design.URL == "" {
		obs.ProxyRequests.WithLabelValues("bad_response").Inc()
		return nil, raw, fmt.Errorf("mcp: response carries no design url: %w", domain.ErrUpstream)
	}

	obs.ProxyRequests.WithLabelValues("ok").Inc()
	c.logger.Debug().Str("design_url", design.URL).Msg("mcp command succeeded")
	return design, raw, nil
}

func upstreamMessage(raw []byte) string {
	var decoded commandResponse
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if msg := firstNonEmpty(decoded.Error, decoded.Message); msg != "" {
			return msg
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return "no response body"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
