package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/market-ledger/cmd/httpserver"
	"github.com/go-petr/market-ledger/internal/events"
	"github.com/go-petr/market-ledger/internal/middleware"
	"github.com/go-petr/market-ledger/pkg/configpkg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	config configpkg.Config
	logger zerolog.Logger
)

// TestMain calls testMain and passes the returned exit code to os.Exit(). The reason
// that TestMain is basically a wrapper around testMain is because os.Exit() does not
// respect deferred functions, so this configuration allows for a deferred function.
func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

// testMain returns an integer denoting an exit code to be returned and used in
// TestMain. The exit code 0 denotes success, all other codes denote failure.
func testMain(m *testing.M) int {
	var err error

	config, err = configpkg.Load("../../../configs")
	if err != nil {
		log.Println("cannot load config:", err)
		return 1
	}

	config.DBDriver = configpkg.DriverFile
	config.KafkaBrokers = ""

	zerolog.SetGlobalLevel(zerolog.FatalLevel)
	logger = middleware.CreateLogger(config)

	gin.SetMode(gin.ReleaseMode)

	return m.Run()
}

// newServer starts a server backed by the snapshot file at source.
func newServer(t *testing.T, source string) *httpserver.Server {
	t.Helper()

	c := config
	c.DBSource = source

	store, err := httpserver.NewStore(context.Background(), c)
	require.NoError(t, err)

	server, err := httpserver.New(context.Background(), logger, c, store, events.Nop{})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := server.Close(); err != nil {
			t.Errorf("server.Close()=%v", err)
		}
	})

	return server
}

func tempSource(t *testing.T) string {
	return filepath.Join(t.TempDir(), "ledger.yaml")
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// call performs the request and decodes the response data into out when the status is 2xx.
func call(t *testing.T, server http.Handler, method, path string, body any, out any) (int, string) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	var env envelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&env))

	if out != nil && recorder.Code < http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}

	return recorder.Code, env.Error
}
