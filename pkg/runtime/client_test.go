package runtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
	"github.com/askiada/go-tempo/pkg/runtime"
)

type inferBody struct {
	ID     string `json:"id"`
	Inputs []struct {
		Name     string    `json:"name"`
		Shape    []int     `json:"shape"`
		Datatype string    `json:"datatype"`
		Data     []float64 `json:"data"`
	} `json:"inputs"`
}

func testDetails(name string) model.Details {
	return model.Details{
		Name:        name,
		Platform:    model.SKLearn,
		LocalFolder: "/artifacts/" + name,
		URI:         "s3://tempo/test/" + name,
	}
}

func newTestClient(t *testing.T, cfg runtime.Config) *runtime.Client {
	t.Helper()

	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond

	client, err := runtime.New(cfg)
	require.NoError(t, err)

	return client
}

func TestClientPredict(t *testing.T) {
	t.Parallel()

	var got inferBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/models/test-iris-sklearn/infer", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"model_name":"test-iris-sklearn","outputs":[{"name":"predict","shape":[1],"datatype":"FP64","data":[1]}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, runtime.Config{Endpoint: srv.URL})

	out, err := client.Predict(context.Background(), testDetails("test-iris-sklearn"), model.Tensor{5.1, 3.5, 1.4, 0.2})
	require.NoError(t, err)
	assert.Equal(t, model.Tensor{1}, out)

	require.Len(t, got.Inputs, 1)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "predict", got.Inputs[0].Name)
	assert.Equal(t, []int{1, 4}, got.Inputs[0].Shape)
	assert.Equal(t, "FP64", got.Inputs[0].Datatype)
	assert.Equal(t, []float64{5.1, 3.5, 1.4, 0.2}, got.Inputs[0].Data)
}

func TestClientPredictEndpointOverride(t *testing.T) {
	t.Parallel()

	var defaultHits, overrideHits atomic.Int32

	defaultSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		defaultHits.Add(1)
		_, _ = w.Write([]byte(`{"outputs":[{"data":[0]}]}`))
	}))
	defer defaultSrv.Close()

	overrideSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		overrideHits.Add(1)
		_, _ = w.Write([]byte(`{"outputs":[{"data":[0.2,0.8]}]}`))
	}))
	defer overrideSrv.Close()

	client := newTestClient(t, runtime.Config{
		Endpoint:  defaultSrv.URL,
		Endpoints: map[string]string{"test-iris-xgboost": overrideSrv.URL},
	})

	out, err := client.Predict(context.Background(), testDetails("test-iris-xgboost"), model.Tensor{1})
	require.NoError(t, err)
	assert.Equal(t, model.Tensor{0.2, 0.8}, out)

	_, err = client.Predict(context.Background(), testDetails("test-iris-sklearn"), model.Tensor{1})
	require.NoError(t, err)

	assert.EqualValues(t, 1, defaultHits.Load())
	assert.EqualValues(t, 1, overrideHits.Load())
}

func TestClientPredictErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		status     int
		body       string
		expMessage string
		expNoOut   bool
	}{
		"json error body": {
			status:     http.StatusBadRequest,
			body:       `{"error":"invalid shape"}`,
			expMessage: "invalid shape",
		},
		"plain error body": {
			status:     http.StatusNotFound,
			body:       "model not found\n",
			expMessage: "model not found",
		},
		"empty error body": {
			status:     http.StatusUnprocessableEntity,
			expMessage: http.StatusText(http.StatusUnprocessableEntity),
		},
		"no outputs": {
			status:   http.StatusOK,
			body:     `{"outputs":[]}`,
			expNoOut: true,
		},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := newTestClient(t, runtime.Config{Endpoint: srv.URL})

			out, err := client.Predict(context.Background(), testDetails("broken"), model.Tensor{1})
			require.Error(t, err)
			assert.Nil(t, out)

			if tc.expNoOut {
				assert.ErrorIs(t, err, runtime.ErrNoOutputs)

				return
			}

			var statusErr *runtime.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tc.status, statusErr.StatusCode)
			assert.Equal(t, "broken", statusErr.Model)
			assert.Equal(t, tc.expMessage, statusErr.Message)
		})
	}
}

func TestClientPredictRetries(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte(`{"outputs":[{"data":[1]}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, runtime.Config{Endpoint: srv.URL, RetryMax: 3})

	out, err := client.Predict(context.Background(), testDetails("flaky"), model.Tensor{1})
	require.NoError(t, err)
	assert.Equal(t, model.Tensor{1}, out)
	assert.EqualValues(t, 3, hits.Load())
}

func TestClientPredictRetriesExhausted(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, runtime.Config{Endpoint: srv.URL, RetryMax: 2})

	_, err := client.Predict(context.Background(), testDetails("down"), model.Tensor{1})

	var statusErr *runtime.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.EqualValues(t, 3, hits.Load())
}

func TestClientPredictNoRetry(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, runtime.Config{Endpoint: srv.URL, RetryMax: -1})

	_, err := client.Predict(context.Background(), testDetails("down"), model.Tensor{1})
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClientPredictMissingEndpoint(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, runtime.Config{
		Endpoints: map[string]string{"known": "http://localhost:1"},
	})

	_, err := client.Predict(context.Background(), testDetails("unknown"), model.Tensor{1})
	assert.ErrorIs(t, err, runtime.ErrEndpointMustBeSet)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg    runtime.Config
		expErr bool
	}{
		"endpoint":            {cfg: runtime.Config{Endpoint: "http://localhost:8080"}},
		"only overrides":      {cfg: runtime.Config{Endpoints: map[string]string{"a": "https://a.example"}}},
		"missing endpoint":    {cfg: runtime.Config{}, expErr: true},
		"bad scheme":          {cfg: runtime.Config{Endpoint: "ftp://localhost"}, expErr: true},
		"bad override scheme": {cfg: runtime.Config{Endpoint: "http://localhost", Endpoints: map[string]string{"a": "s3://a"}}, expErr: true},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := runtime.New(tc.cfg)
			if tc.expErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}
