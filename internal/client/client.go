package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/uilayers/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// DefaultTimeout bounds every API call
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the UI host
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// State is the body of GET /ui
type State struct {
	State types.Snapshot `json:"state"`
	Stats types.Stats    `json:"stats"`
}

// Templates is the body of GET /templates
type Templates struct {
	Templates []types.TemplateMetadata `json:"templates"`
	Stats     types.RegistryStats      `json:"stats"`
}

// Closed reports how many instances a bulk close dismissed
type Closed struct {
	Success bool `json:"success"`
	Closed  int  `json:"closed"`
}

// Client talks to the UI host control-plane API
type Client struct {
	resty   *resty.Client
	baseURL string
}

// New creates a client for the host at baseURL, e.g. http://localhost:8000
func New(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", "uictl/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if req.Header.Get(tracing.HeaderTraceID) == "" {
				req.SetHeader(tracing.HeaderTraceID, uuid.NewString())
			}
			return nil
		})

	return &Client{resty: r, baseURL: baseURL}
}

// WithRetries retries transport failures and 5xx responses
func (c *Client) WithRetries(count int) *Client {
	c.resty.
		SetRetryCount(count).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})
	return c
}

// BaseURL returns the host address
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.resty.R().SetContext(ctx).SetError(&types.ErrorResponse{})
}

// check converts a resty outcome into an error
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	msg := http.StatusText(resp.StatusCode())
	if e, ok := resp.Error().(*types.ErrorResponse); ok && e.Error != "" {
		msg = e.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}

// State returns the presentation snapshot and orchestrator stats
func (c *Client) State(ctx context.Context) (*State, error) {
	var out State
	if err := check(c.request(ctx).SetResult(&out).Get("/ui")); err != nil {
		return nil, err
	}
	return &out, nil
}

// Instance returns one live instance
func (c *Client) Instance(ctx context.Context, instanceID string) (*types.InstanceInfo, error) {
	var out types.OpenResponse
	if err := check(c.request(ctx).SetResult(&out).Get("/ui/" + url.PathEscape(instanceID))); err != nil {
		return nil, err
	}
	return &out.Instance, nil
}

// Open opens tag on layer with optional args
func (c *Client) Open(ctx context.Context, layer types.Layer, tag string, args map[string]interface{}) (*types.InstanceInfo, error) {
	path, err := openPath(layer)
	if err != nil {
		return nil, err
	}

	var out types.OpenResponse
	req := c.request(ctx).
		SetBody(types.OpenRequest{Tag: tag, Args: args}).
		SetResult(&out)
	if err := check(req.Post(path)); err != nil {
		return nil, err
	}
	return &out.Instance, nil
}

func openPath(layer types.Layer) (string, error) {
	switch layer {
	case types.LayerExclusive:
		return "/ui/exclusive", nil
	case types.LayerPanel:
		return "/ui/panels", nil
	case types.LayerOverlay:
		return "/ui/overlays", nil
	default:
		return "", fmt.Errorf("unknown layer %q", layer)
	}
}

// Close routes a close for any live instance
func (c *Client) Close(ctx context.Context, instanceID string) error {
	return check(c.request(ctx).Delete("/ui/" + url.PathEscape(instanceID)))
}

// CloseExclusive empties the exclusive slot
func (c *Client) CloseExclusive(ctx context.Context) (*types.CloseResponse, error) {
	var out types.CloseResponse
	if err := check(c.request(ctx).SetResult(&out).Delete("/ui/exclusive")); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseTopPanel pops the top panel
func (c *Client) CloseTopPanel(ctx context.Context) (*types.CloseResponse, error) {
	var out types.CloseResponse
	if err := check(c.request(ctx).SetResult(&out).Delete("/ui/panels/top")); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseAllPanels empties the panel stack
func (c *Client) CloseAllPanels(ctx context.Context) (int, error) {
	var out Closed
	if err := check(c.request(ctx).SetResult(&out).Delete("/ui/panels")); err != nil {
		return 0, err
	}
	return out.Closed, nil
}

// Reset closes every instance on every layer
func (c *Client) Reset(ctx context.Context) (int, error) {
	var out Closed
	if err := check(c.request(ctx).SetResult(&out).Delete("/ui")); err != nil {
		return 0, err
	}
	return out.Closed, nil
}

// ResumeTopPanel resumes a top panel left paused by a failed open
func (c *Client) ResumeTopPanel(ctx context.Context) (bool, error) {
	var out struct {
		Resumed bool `json:"resumed"`
	}
	if err := check(c.request(ctx).SetResult(&out).Post("/ui/panels/resume")); err != nil {
		return false, err
	}
	return out.Resumed, nil
}

// Templates lists template metadata, optionally filtered by kind
func (c *Client) Templates(ctx context.Context, kind types.TemplateKind) (*Templates, error) {
	var out Templates
	req := c.request(ctx).SetResult(&out)
	if kind != "" {
		req.SetQueryParam("kind", string(kind))
	}
	if err := check(req.Get("/templates")); err != nil {
		return nil, err
	}
	return &out, nil
}

// Template returns one template in full
func (c *Client) Template(ctx context.Context, tag string) (*types.Template, error) {
	var out types.Template
	if err := check(c.request(ctx).SetResult(&out).Get("/templates/" + url.PathEscape(tag))); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register stores tmpl on the host
func (c *Client) Register(ctx context.Context, tmpl types.Template) (*types.Template, error) {
	var out types.Template
	if err := check(c.request(ctx).SetBody(tmpl).SetResult(&out).Post("/templates")); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unregister removes a template
func (c *Client) Unregister(ctx context.Context, tag string) error {
	return check(c.request(ctx).Delete("/templates/" + url.PathEscape(tag)))
}

// Reload re-reads the host's configured catalog
func (c *Client) Reload(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := check(c.request(ctx).SetResult(&out).Post("/templates/reload")); err != nil {
		return nil, err
	}
	return out, nil
}

// Health returns the host health report
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := c.request(ctx).SetResult(&out).Get("/health")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusServiceUnavailable {
		// Degraded hosts still report their status body
		_ = sonic.Unmarshal(resp.Body(), &out)
		return out, &APIError{Status: resp.StatusCode(), Message: "degraded"}
	}
	if err := check(resp, nil); err != nil {
		return nil, err
	}
	return out, nil
}
