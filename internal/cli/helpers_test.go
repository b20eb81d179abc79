package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-tempo/internal/cli"
	"github.com/askiada/go-tempo/internal/config"
	"github.com/askiada/go-tempo/pkg/classifier"
)

// newIrisServer answers like the two iris models: sklearn predicts 1 when the first feature is 5.1.
func newIrisServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Inputs []struct {
				Data []float64 `json:"data"`
			} `json:"inputs"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Inputs) == 0 || len(req.Inputs[0].Data) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid request"}`))

			return
		}

		var out []float64

		switch r.URL.Path {
		case "/v2/models/" + classifier.SKLearnModelName + "/infer":
			out = []float64{0}
			if req.Inputs[0].Data[0] == 5.1 {
				out = []float64{1}
			}
		case "/v2/models/" + classifier.XGBoostModelName + "/infer":
			out = []float64{0.1, 0.9}
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"unknown model"}`))

			return
		}

		resp, _ := json.Marshal(map[string]any{"outputs": []map[string]any{{"name": "predict", "data": out}}})
		_, _ = w.Write(resp)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func writeConfig(t *testing.T, endpoint string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	artifacts := filepath.Join(dir, "artifacts")
	path := filepath.Join(dir, "tempo.toml")

	content := fmt.Sprintf("artifacts_folder = %q\n\n[runtime]\nendpoint = %q\nretry_max = -1\n\n[log]\nno_color = true\n", artifacts, endpoint)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path, artifacts
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EndpointEnv, "")

	var stdout, stderr bytes.Buffer

	cmd := cli.NewRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}
