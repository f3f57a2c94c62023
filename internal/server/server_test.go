package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apikeydomain "github.com/insightpulse/scout/internal/apikey/domain"
	"github.com/insightpulse/scout/internal/authz"
)

var errAuthzForbidden = authz.ErrForbidden

func TestIngestAcceptsPayload(t *testing.T) {
	h := newTestHarness(t)
	token := h.issueKey(t, apikeydomain.ScopeIngestWrite)

	w := h.request(http.MethodPost, "/api/ingest", token,
		`{"payload":{"transaction_id":"t1","peso_value":"99.99"},"source_path":"edge/scoutpi-0002/file.json"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.NotNil(t, h.landing.lastAppend)
	assert.Equal(t, "edge/scoutpi-0002/file.json", h.landing.lastAppend.SourcePath)
	assert.Equal(t, "t1", h.landing.lastAppend.Payload["transaction_id"])
	assert.Equal(t, h.orgID, h.landing.lastOrg)
}

func TestIngestRejectsMissingKey(t *testing.T) {
	h := newTestHarness(t)

	w := h.request(http.MethodPost, "/api/ingest", "", `{"payload":{}}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngestRejectsWrongScope(t *testing.T) {
	h := newTestHarness(t)
	token := h.issueKey(t, apikeydomain.ScopeGoldRead)

	w := h.request(http.MethodPost, "/api/ingest", token, `{"payload":{}}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIngestRejectsBogusToken(t *testing.T) {
	h := newTestHarness(t)
	h.issueKey(t, apikeydomain.ScopeIngestWrite)

	w := h.request(http.MethodPost, "/api/ingest", "sk_not_a_real_key", `{"payload":{}}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoadPendingReturnsInsertedCount(t *testing.T) {
	h := newTestHarness(t)
	h.bronze.inserted = 7
	token := h.issueKey(t, apikeydomain.ScopeETLRun)

	w := h.request(http.MethodPost, "/api/etl/load-pending", token, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body["inserted"])
}

func TestPromoteNewReturnsInsertedCount(t *testing.T) {
	h := newTestHarness(t)
	h.silver.inserted = 3
	token := h.issueKey(t, apikeydomain.ScopeETLRun)

	w := h.request(http.MethodPost, "/api/etl/promote-new", token, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body["inserted"])
}

func TestDailyRevenueParsesWindow(t *testing.T) {
	h := newTestHarness(t)
	token := h.issueKey(t, apikeydomain.ScopeGoldRead)

	w := h.request(http.MethodGet, "/api/gold/daily-revenue?start=2024-01-01&end=2024-01-31", token, "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDailyRevenueRejectsMalformedStart(t *testing.T) {
	h := newTestHarness(t)
	token := h.issueKey(t, apikeydomain.ScopeGoldRead)

	w := h.request(http.MethodGet, "/api/gold/daily-revenue?start=not-a-date", token, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Type)
}

func TestErrorMappingForbidden(t *testing.T) {
	h := newTestHarness(t)
	h.bronze.err = errAuthzForbidden
	token := h.issueKey(t, apikeydomain.ScopeETLRun)

	w := h.request(http.MethodPost, "/api/etl/load-pending", token, "")

	assert.Equal(t, http.StatusForbidden, w.Code)
}
