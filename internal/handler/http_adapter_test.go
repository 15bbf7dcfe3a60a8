package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sungenyeint/money-tracker/internal/models"
)

func triggerEnvelope(t *testing.T, method, url string, query map[string]string, headers map[string][]string, body string, isBase64 bool) *http.Request {
	t.Helper()
	var env HTTPTriggerRequest
	env.Data.Req.Method = method
	env.Data.Req.URL = url
	env.Data.Req.Query = query
	env.Data.Req.Headers = headers
	env.Data.Req.Body = body
	env.Data.Req.IsBase64Encoded = isBase64
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/HttpTrigger", strings.NewReader(string(raw)))
}

func decodeTriggerResponse(t *testing.T, w *httptest.ResponseRecorder) HTTPTriggerResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var resp HTTPTriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHttpTrigger_WrapsMux(t *testing.T) {
	mockLedger := &MockLedger{
		ListFunc: func(ctx context.Context, ownerID string) ([]models.Transaction, error) {
			return sampleTransactions(), nil
		},
	}
	deps := &Dependencies{Ledger: mockLedger}

	req := triggerEnvelope(t, http.MethodGet, "http://localhost/api/transactions", map[string]string{"type": "income"}, nil, "", false)
	w := serve(deps, "u1", req)

	resp := decodeTriggerResponse(t, w)
	assert.Equal(t, http.StatusOK, resp.Outputs.Res.StatusCode)
	assert.Equal(t, "application/json", resp.Outputs.Res.Headers["Content-Type"])

	var got []models.Transaction
	require.NoError(t, json.Unmarshal([]byte(resp.Outputs.Res.Body), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestHttpTrigger_JSONBodyAndHeaders(t *testing.T) {
	mockLedger := &MockLedger{
		CreateFunc: func(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error) {
			require.NotNil(t, fields.Description)
			assert.Equal(t, "Lunch", *fields.Description)
			return &models.Transaction{ID: "new", OwnerID: ownerID}, nil
		},
	}
	deps := &Dependencies{Ledger: mockLedger}

	headers := map[string][]string{"Content-Type": {"application/json"}}
	req := triggerEnvelope(t, http.MethodPost, "http://localhost/api/transactions", nil, headers, `{"description":"Lunch"}`, false)
	w := serve(deps, "u1", req)

	resp := decodeTriggerResponse(t, w)
	assert.Equal(t, http.StatusCreated, resp.Outputs.Res.StatusCode)
	assert.Contains(t, resp.Outputs.Res.Body, `"id":"new"`)
}

func TestHttpTrigger_Base64Body(t *testing.T) {
	var description string
	mockLedger := &MockLedger{
		CreateFunc: func(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error) {
			description = *fields.Description
			return &models.Transaction{ID: "new"}, nil
		},
	}
	deps := &Dependencies{Ledger: mockLedger}

	body := base64.StdEncoding.EncodeToString([]byte(`{"description":"Coffee"}`))
	headers := map[string][]string{"Content-Type": {"application/json"}}
	req := triggerEnvelope(t, http.MethodPost, "http://localhost/api/transactions", nil, headers, body, true)
	w := serve(deps, "u1", req)

	resp := decodeTriggerResponse(t, w)
	assert.Equal(t, http.StatusCreated, resp.Outputs.Res.StatusCode)
	assert.Equal(t, "Coffee", description)
}

func TestHttpTrigger_URLQueryWins(t *testing.T) {
	deps := &Dependencies{Ledger: listing(sampleTransactions())}

	req := triggerEnvelope(t, http.MethodGet, "http://localhost/api/transactions?type=expense", map[string]string{"type": "income"}, nil, "", false)
	w := serve(deps, "u1", req)

	resp := decodeTriggerResponse(t, w)
	var got []models.Transaction
	require.NoError(t, json.Unmarshal([]byte(resp.Outputs.Res.Body), &got))
	assert.Len(t, got, 2)
}

func TestHttpTrigger_RejectsLoop(t *testing.T) {
	deps := &Dependencies{Ledger: &MockLedger{}}

	req := triggerEnvelope(t, http.MethodPost, "http://localhost/HttpTrigger", nil, nil, "", false)
	w := serve(deps, "u1", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHttpTrigger_InvalidEnvelope(t *testing.T) {
	deps := &Dependencies{Ledger: &MockLedger{}}

	w := serve(deps, "u1", httptest.NewRequest(http.MethodPost, "/HttpTrigger", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := triggerEnvelope(t, "", "http://localhost/api/transactions", nil, nil, "", false)
	w = serve(deps, "u1", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWrappedBody(t *testing.T) {
	read := func(t *testing.T, body string, isBase64 bool, contentType string) string {
		t.Helper()
		buf := new(strings.Builder)
		_, err := io.Copy(buf, wrappedBody(body, isBase64, contentType))
		require.NoError(t, err)
		return buf.String()
	}

	encoded := base64.StdEncoding.EncodeToString([]byte("a,b\n1,2"))
	assert.Equal(t, "a,b\n1,2", read(t, encoded, false, "text/csv"))
	assert.Equal(t, "a,b\n1,2", read(t, encoded, true, "application/json"))
	assert.Equal(t, `{"a":1}`, read(t, `{"a":1}`, false, "application/json; charset=utf-8"))
	assert.Equal(t, "not base64!", read(t, "not base64!", true, "text/plain"))
	assert.Equal(t, "", read(t, "", false, ""))
}

func TestHttpTrigger_OnlyForwardsAPI(t *testing.T) {
	var createdFor []string
	deps := &Dependencies{
		Ledger: &MockLedger{CreateFunc: func(ctx context.Context, ownerID string, fields models.TransactionFields) (*models.Transaction, error) {
			createdFor = append(createdFor, ownerID)
			return &models.Transaction{}, nil
		}},
		Blob: &MockBlobClient{DownloadTextFunc: func(ctx context.Context, containerName, blobName string) (string, error) {
			return "Date,Type,Category,Description,Amount\n2024-02-01,expense,Food,Lunch,5", nil
		}},
		Queue: &MockQueueClient{},
	}
	denyAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusUnauthorized, "unauthenticated")
		})
	}
	mux := deps.Routes(denyAll)

	queueBody := `{"Data":{"queueItem":"{\"blob_name\":\"uploads/victim/x.csv\",\"owner_id\":\"victim\"}"}}`
	for _, target := range []string{
		"http://localhost/ProcessQueue",
		"http://localhost/processqueue",
		"http://localhost/api/../ProcessQueue",
		"http://localhost/HttpTrigger",
	} {
		headers := map[string][]string{"Content-Type": {"application/json"}}
		req := triggerEnvelope(t, http.MethodPost, target, nil, headers, queueBody, false)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
	assert.Empty(t, createdFor)

	// API routes are still forwarded, behind authentication.
	req := triggerEnvelope(t, http.MethodPost, "http://localhost/api/transactions", nil, nil, `{}`, false)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	resp := decodeTriggerResponse(t, w)
	assert.Equal(t, http.StatusUnauthorized, resp.Outputs.Res.StatusCode)
}
