package client

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/claudehenchoz/trinket/pkg/handler"
	"github.com/claudehenchoz/trinket/requests"
	"github.com/claudehenchoz/trinket/responses"
	"github.com/claudehenchoz/trinket/snippet"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Client talks to a running trinket daemon over HTTP.
	// Caution: the provided endpoint is not validated.
	Client struct {
		endpoint   string
		httpClient *http.Client
	}
	Option func(*Client)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// New creates a client for the daemon exposed at endpoint, e.g.
// "http://127.0.0.1:8283/trinket".
func New(endpoint string, opts ...Option) *Client {
	inst := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Client) {
		o.httpClient = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Save captures a new snippet on the daemon.
func (c *Client) Save(ctx context.Context, content string) (*snippet.Snippet, error) {
	response := &responses.Save{}
	if err := c.call(ctx, handler.RouteSave, &requests.Save{Content: content}, response); err != nil {
		return nil, err
	}
	return response.Snippet, nil
}

// Query filters the daemon's collection by a case-insensitive substring
// pattern; an empty pattern returns everything.
func (c *Client) Query(ctx context.Context, pattern string) ([]snippet.Result, error) {
	response := &responses.Query{}
	if err := c.call(ctx, handler.RouteQuery, &requests.Query{Pattern: pattern}, response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// Reload tells the daemon to reconcile its index with disk truth.
func (c *Client) Reload(ctx context.Context) (*responses.Reload, error) {
	response := &responses.Reload{}
	if err := c.call(ctx, handler.RouteReload, &requests.Reload{}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (c *Client) call(ctx context.Context, route handler.Route, request interface{}, response interface{}) error {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint+"/"+string(route),
		bytes.NewBuffer(requestBytes),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	httpResponse, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to call daemon")
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return errors.Errorf("non 200 reply: %s", httpResponse.Status)
	}
	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// the handler reports request level failures as an error reply
	errorReply := &responses.Error{}
	if err := json.Unmarshal(responseBytes, errorReply); err == nil && errorReply.Code != 0 {
		return errorReply
	}

	return json.Unmarshal(responseBytes, response)
}
