package gotomeeting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/conductorone/baton-sdk/pkg/uhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	BaseURL = "https://api.getgo.com/G2M/rest"
)

// Requester sends a request against the API and decodes the JSON response
// into response when it is non-nil.
type Requester interface {
	SendRequest(ctx context.Context, method, path string, query url.Values, body, response interface{}) error
}

type Client struct {
	wrapper *uhttp.BaseHttpClient
	baseURL *url.URL
}

func NewClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = BaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("gotomeeting: invalid base url %q: %w", baseURL, err)
	}

	return &Client{
		wrapper: uhttp.NewBaseHttpClient(httpClient),
		baseURL: u,
	}, nil
}

type ErrorResponse struct {
	ErrorCode   string `json:"errorCode"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func (e *ErrorResponse) detail() string {
	if e.Description != "" {
		return e.Description
	}

	return e.Message
}

func (c *Client) prepareURL(path string) *url.URL {
	return c.baseURL.JoinPath(path)
}

func (c *Client) SendRequest(ctx context.Context, method, path string, query url.Values, body, response interface{}) error {
	u := c.prepareURL(path)

	req, err := c.createRequest(ctx, method, u, body, query)
	if err != nil {
		return err
	}

	opts := []uhttp.DoOption{WithErrorResponse(&ErrorResponse{})}
	if response != nil {
		opts = append(opts, uhttp.WithJSONResponse(response))
	}

	resp, err := c.wrapper.Do(req, opts...)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	return nil
}

func (c *Client) createRequest(ctx context.Context, method string, urlAddress *url.URL, body interface{}, queryParams url.Values) (*http.Request, error) {
	reqOpts := []uhttp.RequestOption{uhttp.WithAcceptJSONHeader()}
	if body != nil {
		reqOpts = append(reqOpts, uhttp.WithJSONBody(body))
	}

	req, err := c.wrapper.NewRequest(ctx, method, urlAddress, reqOpts...)
	if err != nil {
		return nil, err
	}

	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}

	return req, nil
}

func WithErrorResponse(resource *ErrorResponse) uhttp.DoOption {
	return func(resp *uhttp.WrapperResponse) error {
		if resp.StatusCode < 300 {
			return nil
		}

		code := codes.Unknown
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusConflict:
			code = codes.InvalidArgument
		case http.StatusUnauthorized:
			code = codes.Unauthenticated
		case http.StatusForbidden:
			code = codes.PermissionDenied
		case http.StatusNotFound:
			code = codes.NotFound
		case http.StatusTooManyRequests:
			code = codes.Unavailable
		}

		if err := json.Unmarshal(resp.Body, resource); err != nil {
			return status.Error(code, fmt.Sprintf("Request failed with status %d", resp.StatusCode))
		}

		return status.Error(code, fmt.Sprintf("Request failed with status %d: %s", resp.StatusCode, resource.detail()))
	}
}
