package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name           string
		requestID      string
		handler        gin.HandlerFunc
		wantStatusCode int
		wantLevel      string
	}{
		{
			name: "OK",
			handler: func(c *gin.Context) {
				zerolog.Ctx(c.Request.Context()).Info().Msg("inside")
				c.Status(http.StatusOK)
			},
			wantStatusCode: http.StatusOK,
			wantLevel:      "info",
		},
		{
			name:      "KeepsRequestID",
			requestID: "req-1",
			handler: func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			},
			wantStatusCode: http.StatusNoContent,
			wantLevel:      "info",
		},
		{
			name: "Panic",
			handler: func(c *gin.Context) {
				panic("boom")
			},
			wantStatusCode: http.StatusInternalServerError,
			wantLevel:      "error",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			server := gin.New()
			server.Use(RequestLogger(zerolog.New(&buf)))
			server.GET("/", tc.handler)

			req, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)

			if tc.requestID != "" {
				req.Header.Set(RequestIDHeader, tc.requestID)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			requestID := recorder.Header().Get(RequestIDHeader)
			require.NotEmpty(t, requestID)

			if tc.requestID != "" {
				require.Equal(t, tc.requestID, requestID)
			}

			// Every line carries the request id, the last one is the access log.
			var last map[string]any

			dec := json.NewDecoder(&buf)
			for dec.More() {
				last = map[string]any{}
				require.NoError(t, dec.Decode(&last))
				require.Equal(t, requestID, last["request_id"])
			}

			require.Equal(t, tc.wantLevel, last["level"])
			require.EqualValues(t, tc.wantStatusCode, last["status_code"])
			require.Equal(t, "/", last["path"])
		})
	}
}
