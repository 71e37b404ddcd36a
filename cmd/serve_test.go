package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/transcribe-cli/internal/server"
)

func TestRouterConfig(t *testing.T) {
	c := testConfig(t)
	c.Dedupe.Seed = 12
	c.Clean.ExtraFragments = []string{"[unclear]"}

	rc := routerConfig(c)
	assert.Equal(t, int64(32<<20), rc.MaxUploadBytes)
	assert.InDelta(t, 5.0, rc.RatePerSec, 0.001)
	assert.Equal(t, 10, rc.Burst)
	assert.Equal(t, []string{"*"}, rc.AllowedOrigins)
	assert.Equal(t, "subject_ids", rc.Columns.Subject)
	assert.Equal(t, "annotations", rc.Columns.Annotation)
	assert.Equal(t, []string{"[unclear]"}, rc.ExtraFragments)
	assert.Equal(t, uint64(12), rc.Seed)
	assert.Equal(t, 4, rc.PadWidth)
	assert.Equal(t, "00000nam a2200000 a 4500", rc.MARC.Leader)
}

func TestRouterConfig_Health(t *testing.T) {
	c := testConfig(t)

	h := server.NewRouter(routerConfig(c))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeCmd_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Server.Burst = 0

	err := serveCmd.RunE(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.burst")
}
