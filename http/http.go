package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kardolus/agentic/types"
)

const (
	contentType              = "application/json"
	errFailedToRead          = "failed to read response: %w"
	errFailedToCreateRequest = "failed to create request: %w"
	errFailedToMakeRequest   = "failed to make request: %w"
	errHTTP                  = "http status %d: %s"
	errHTTPStatus            = "http status: %d"
	headerContentType        = "Content-Type"
	defaultTimeout           = 2 * time.Minute
)

//go:generate mockgen -destination=../client/callermocks_test.go -package=client_test github.com/kardolus/agentic/http Caller
type Caller interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

type RestCaller struct {
	client *http.Client
	config types.Config
}

// Ensure RestCaller implements Caller interface
var _ Caller = &RestCaller{}

func New(cfg types.Config) *RestCaller {
	return &RestCaller{
		client: &http.Client{Timeout: defaultTimeout},
		config: cfg,
	}
}

type CallerFactory func(cfg types.Config) Caller

func RealCallerFactory(cfg types.Config) Caller {
	return New(cfg)
}

// Post sends body as JSON and returns the full response body. Non-2xx
// responses become errors carrying the provider's message when it sent one.
func (r *RestCaller) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := r.newRequest(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf(errFailedToCreateRequest, err)
	}

	response, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFailedToMakeRequest, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		if response.StatusCode < 200 || response.StatusCode >= 300 {
			return nil, fmt.Errorf(errHTTPStatus, response.StatusCode)
		}
		return nil, fmt.Errorf(errFailedToRead, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var errorData types.ErrorResponse
		if err := json.Unmarshal(raw, &errorData); err != nil || errorData.Error.Message == "" {
			return nil, fmt.Errorf(errHTTPStatus, response.StatusCode)
		}
		return nil, fmt.Errorf(errHTTP, response.StatusCode, errorData.Error.Message)
	}

	return raw, nil
}

func (r *RestCaller) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if r.config.APIKey != "" {
		req.Header.Set(r.config.AuthHeader, r.config.AuthTokenPrefix+r.config.APIKey)
	}
	req.Header.Set(headerContentType, contentType)

	return req, nil
}
