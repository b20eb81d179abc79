package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

const maxErrorBodySize = 1 << 16

var ErrNoOutputs = errors.New("inference response has no outputs")

// StatusError is returned when the platform answers with a non 2xx status.
type StatusError struct {
	Model      string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model %s: inference failed with status %d: %s", e.Model, e.StatusCode, e.Message)
}

// Client is a V2 inference protocol client.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid runtime config")
	}

	httpClient := retryablehttp.NewClient()
	httpClient.HTTPClient.Timeout = cfg.Timeout
	httpClient.RetryMax = cfg.RetryMax
	httpClient.RetryWaitMin = cfg.RetryWaitMin
	httpClient.RetryWaitMax = cfg.RetryWaitMax
	httpClient.Logger = cfg.Logger
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		cfg:  cfg,
		http: httpClient,
	}, nil
}

func (c *Client) inferURL(name string) (string, error) {
	endpoint, ok := c.cfg.Endpoints[name]
	if !ok {
		endpoint = c.cfg.Endpoint
	}

	if endpoint == "" {
		return "", errors.Wrapf(ErrEndpointMustBeSet, "model %s", name)
	}

	return url.JoinPath(endpoint, "v2", "models", name, "infer")
}

// Predict sends input as a single FP64 row to the model named in details.
func (c *Client) Predict(ctx context.Context, details model.Details, input model.Tensor) (model.Tensor, error) {
	inferURL, err := c.inferURL(details.Name)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(inferenceRequest{
		ID: uuid.NewString(),
		Inputs: []requestData{{
			Name:     inputName,
			Shape:    []int{1, len(input)},
			Datatype: inputDatatype,
			Data:     input,
		}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode inference request")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, inferURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create inference request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", details.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(details.Name, resp)
	}

	var inferResp inferenceResponse

	err = json.NewDecoder(resp.Body).Decode(&inferResp)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s: unable to decode inference response", details.Name)
	}

	if len(inferResp.Outputs) == 0 {
		return nil, errors.Wrapf(ErrNoOutputs, "model %s", details.Name)
	}

	return model.Tensor(inferResp.Outputs[0].Data), nil
}

func newStatusError(name string, resp *http.Response) error {
	statusErr := &StatusError{
		Model:      name,
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return statusErr
	}

	var errResp errorResponse
	if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
		statusErr.Message = errResp.Error

		return statusErr
	}

	statusErr.Message = string(bytes.TrimSpace(raw))

	return statusErr
}

var _ model.Runtime = (*Client)(nil)
