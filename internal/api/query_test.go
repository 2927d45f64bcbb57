package api_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dbis-ilm/poseidon-go/internal/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store, tm := seedStore(t)
	return api.NewRouter(&api.RouterDeps{
		Log:           discardLogger(),
		Store:         store,
		TM:            tm,
		CORSOrigins:   []string{"http://localhost:5173"},
		DefaultChunks: 1,
		Version:       "test",
	})
}

func TestQueryRunReturnsRows(t *testing.T) {
	r := newTestRouter(t)

	body := []byte(`{
		"pipelines": [{
			"id": "p0",
			"root": {
				"type": "scan",
				"id": 1,
				"labels": ["Person"],
				"subscriber": {
					"type": "projection",
					"id": 2,
					"items": [{"kind": "forward", "pos": 0}],
					"subscriber": {"type": "collect", "id": 3}
				}
			}
		}],
		"profile": true
	}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"3"`)
	require.Contains(t, w.Body.String(), `"profile"`)
}

func TestQueryRunRejectsInvalidPlan(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte(`not json`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), api.ErrCodeInvalidPlan)
}

func TestHealthLiveness(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"gstore"`)
}
