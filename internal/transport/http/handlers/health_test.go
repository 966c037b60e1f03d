package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	t.Run("healthz_always_ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHealthHandler(nil).Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":{"status":"ok"}}`, rr.Body.String())
	})

	t.Run("readyz_pings_db", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectPing()

		h := NewHealthHandler(map[string]Pinger{"postgres": db, "redis": nil})
		rr := httptest.NewRecorder()
		h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("readyz_reports_failed_dependency", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{
			"redis": PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
		})
		rr := httptest.NewRecorder()
		h.Readyz(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		var body struct {
			Error struct {
				Code string            `json:"code"`
				Meta map[string]string `json:"meta"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Error.Code)
		assert.Equal(t, "connection refused", body.Error.Meta["redis"])
	})
}
