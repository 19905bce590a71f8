package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/raffle/pkg/codec"
	"github.com/ssargent/raffle/pkg/records"
	"github.com/ssargent/raffle/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server  *Server
	records *records.Store
	engine  *store.KVStore
	handler http.Handler
}

// setupTestServer serves a log-engine store in a temporary directory. Ids are
// handed out from ids in order.
func setupTestServer(t *testing.T, ids ...string) *testServer {
	t.Helper()

	kv, err := store.NewKVStore(store.KVStoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	_, err = kv.Open()
	require.NoError(t, err)

	var opts []records.Option
	if len(ids) > 0 {
		next := 0
		opts = append(opts, records.WithIDGenerator(func() string {
			id := ids[next%len(ids)]
			next++
			return id
		}))
	}
	recs := records.New(kv, opts...)
	t.Cleanup(func() { _ = recs.Close() })

	server := NewServer(recs, ServerConfig{}, NewMetrics(prometheus.NewRegistry()), nil)
	return &testServer{server: server, records: recs, engine: kv, handler: server.Routes()}
}

func (ts *testServer) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func signupForm() url.Values {
	return url.Values{
		"firstname":   {"Ada"},
		"lastname":    {"Lovelace"},
		"company":     {"Analytical Engines"},
		"title":       {"Engineer"},
		"department":  {"R&D"},
		"email":       {"ada@example.com"},
		"city":        {"London"},
		"country":     {"UK"},
		"phonenumber": {"5551234"},
	}
}

func TestServer_handleHealth(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, map[string]interface{}{"status": "healthy", "records": float64(0)}, response.Data)
}

func TestServer_handleHealth_StoreClosed(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.engine.Close())

	w := ts.do("GET", "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Pages(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do("GET", "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `name="phonenumber"`)
	assert.Contains(t, w.Body.String(), `action="/signup"`)

	w = ts.do("GET", "/success.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thank you")

	w = ts.do("GET", "/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_handleSignup(t *testing.T) {
	ts := setupTestServer(t, "id-1")

	w := ts.do("POST", "/signup", signupForm())
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/success.html", w.Header().Get("Location"))

	got, err := ts.records.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "R&D", got.Department)
	assert.Equal(t, "5551234", got.PhoneNumber)
	assert.Empty(t, got.Comment)
}

func TestServer_handleSignup_FieldRules(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(url.Values)
		expectedStatus int
	}{
		{"empty values are allowed", func(v url.Values) { v.Set("company", "") }, http.StatusSeeOther},
		{"missing field", func(v url.Values) { v.Del("email") }, http.StatusBadRequest},
		{"missing department", func(v url.Values) { v.Del("department") }, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)

			form := signupForm()
			tt.mutate(form)
			w := ts.do("POST", "/signup", form)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestServer_handleShowRecord(t *testing.T) {
	ts := setupTestServer(t, "id-1")
	_, err := ts.records.Create(codec.Record{FirstName: "Ada", LastName: "Lovelace", Comment: "front row"})
	require.NoError(t, err)

	w := ts.do("GET", "/records/id-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "front row")
	assert.Contains(t, body, `action="/records/id-1"`)

	w = ts.do("GET", "/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "record not found")
}

func TestServer_handleShowRecord_Corrupt(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.engine.Put([]byte("bad"), []byte("garbage")))

	w := ts.do("GET", "/records/bad", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "record is corrupt")
}

func TestServer_handleUpdateRecord(t *testing.T) {
	ts := setupTestServer(t, "id-1")
	_, err := ts.records.Create(codec.Record{FirstName: "Ada"})
	require.NoError(t, err)

	form := signupForm()
	form.Set("comment", "won a mug")

	w := ts.do("POST", "/records/id-1", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/records", w.Header().Get("Location"))

	got, err := ts.records.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "won a mug", got.Comment)
	assert.Equal(t, "Lovelace", got.LastName)

	// upsert
	w = ts.do("POST", "/records/new-id", form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	_, err = ts.records.Get("new-id")
	assert.NoError(t, err)

	// the comment field is required on update
	w = ts.do("POST", "/records/id-1", signupForm())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_handleUpdateRecord_TextareaLineBreaks(t *testing.T) {
	ts := setupTestServer(t)

	form := signupForm()
	form.Set("comment", "first line\r\nsecond line")

	w := ts.do("POST", "/records/id-1", form)
	require.Equal(t, http.StatusSeeOther, w.Code)

	got, err := ts.records.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", got.Comment)
}

func TestServer_handleListRecords(t *testing.T) {
	ts := setupTestServer(t, "id-1", "id-2")

	w := ts.do("GET", "/records", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Registrations (0)")

	_, err := ts.records.Create(codec.Record{FirstName: "Ada", Company: "Engines"})
	require.NoError(t, err)
	_, err = ts.records.Create(codec.Record{FirstName: "Grace", Company: "Navy"})
	require.NoError(t, err)

	w = ts.do("GET", "/records", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Registrations (2)")
	assert.Contains(t, body, `href="/records/id-1"`)
	assert.Contains(t, body, `href="/raffle/id-2"`)
	assert.Contains(t, body, "Navy")
}

func TestServer_handleRaffle(t *testing.T) {
	ts := setupTestServer(t, "id-1")

	w := ts.do("GET", "/raffle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "empty store")
	assert.Contains(t, w.Body.String(), "no records to draw from")

	_, err := ts.records.Create(codec.Record{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	w = ts.do("GET", "/raffle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Lovelace")
	assert.Contains(t, w.Body.String(), "ada@example.com")
	assert.Contains(t, w.Body.String(), "id-1")
}

func TestServer_handleRaffleByID(t *testing.T) {
	ts := setupTestServer(t, "id-1")
	_, err := ts.records.Create(codec.Record{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"})
	require.NoError(t, err)

	w := ts.do("GET", "/raffle/id-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Grace Hopper")

	w = ts.do("GET", "/raffle/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_handleRegistrations(t *testing.T) {
	ts := setupTestServer(t, "id-1")

	w := ts.do("GET", "/registrations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	_, err := ts.records.Create(codec.Record{FirstName: "Ada"})
	require.NoError(t, err)

	w = ts.do("GET", "/registrations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var entries []records.Entry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "id-1", entries[0].ID)
	assert.Equal(t, "Ada", entries[0].Record.FirstName)
}

func TestServer_handleExportCSV(t *testing.T) {
	ts := setupTestServer(t, "id-1")
	_, err := ts.records.Create(codec.Record{FirstName: "Ada", PhoneNumber: "5551234"})
	require.NoError(t, err)

	w := ts.do("GET", "/export.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `"id-1";"Ada";"";"";"";"";"";"";"";"=""5551234""";""`, w.Body.String())
}

func TestServer_handleExportXLSX(t *testing.T) {
	ts := setupTestServer(t)
	_, err := ts.records.Create(codec.Record{FirstName: "Ada"})
	require.NoError(t, err)

	w := ts.do("GET", "/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"), "xlsx is a zip archive")
}

func TestServer_handleExportXLSX_FieldTooLong(t *testing.T) {
	ts := setupTestServer(t)
	_, err := ts.records.Create(codec.Record{Comment: strings.Repeat("x", 40000)})
	require.NoError(t, err)

	w := ts.do("GET", "/export.xlsx", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_handleDeleteRecord(t *testing.T) {
	ts := setupTestServer(t, "id-1")
	_, err := ts.records.Create(codec.Record{FirstName: "Ada"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		w := ts.do("DELETE", "/records/id-1", nil)
		require.Equal(t, http.StatusOK, w.Code, "delete is idempotent")
		assert.JSONEq(t, `{}`, w.Body.String())
	}

	_, err = ts.records.Get("id-1")
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestServer_Metrics(t *testing.T) {
	ts := setupTestServer(t)

	ts.do("GET", "/health", nil)
	ts.do("GET", "/records/missing", nil)

	w := ts.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `raffle_http_requests_total{endpoint="/health",method="GET",status_code="200"} 1`)
	assert.Contains(t, body, `raffle_http_requests_total{endpoint="/records/{id}",method="GET",status_code="404"} 1`)
	assert.Contains(t, body, `raffle_record_operations_total{operation="get",status="error"} 1`)
	assert.Contains(t, body, `raffle_health_checks_total{status="success"} 1`)
}
