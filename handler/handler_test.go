package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"coalhub/middleware"
	"coalhub/model"
	"coalhub/service/catalog"
	"coalhub/service/record"
	"coalhub/service/sheet"
	"coalhub/service/storage"
	"coalhub/service/store"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	store    *flakyStore
	filesDir string
}

// flakyStore fails every Put while failPut is set.
type flakyStore struct {
	*store.Memory
	failPut atomic.Bool
}

func (s *flakyStore) Put(ctx context.Context, rec *model.TestingRecord) error {
	if s.failPut.Load() {
		return errors.New("store unavailable")
	}
	return s.Memory.Put(ctx, rec)
}

func newTestServer(t *testing.T, rateLimit gin.HandlerFunc) *testServer {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewLocal(dir)
	require.NoError(t, err)

	st := &flakyStore{Memory: store.NewMemory()}
	h := New(Config{
		Records: record.New(st,
			record.WithClock(clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))),
			record.WithFiles(files),
		),
		Catalog:       catalog.Default(),
		Storage:       files,
		MaxUploadSize: 64 << 10,
		RateLimit:     rateLimit,
	})

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.GET("/ping", HandlePing)
	h.RegisterRoutes(r)
	return &testServer{router: r, store: st, filesDir: dir}
}

// storedFiles lists the objects kept below the storage directory.
func (s *testServer) storedFiles(t *testing.T) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(s.filesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(s.filesDir, path)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}

func (s *testServer) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, body string) *httptest.ResponseRecorder {
	return s.do(method, path, strings.NewReader(body), "application/json")
}

func (s *testServer) create(t *testing.T, body string) model.TestingRecord {
	t.Helper()
	w := s.doJSON(http.MethodPost, "/api/testing-records", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec model.TestingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	return rec
}

func multipartFile(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

const sampleRecord = `{
	"customerName": "Li Wei",
	"company": "Shenhua",
	"email": "li.wei@example.com",
	"coalType": "thermal",
	"standards": ["GB/T 212"],
	"results": [
		{"itemCode": "CV", "value": 5500, "weight": 1},
		{"itemCode": "CV", "value": "5800", "weight": "2"},
		{"itemCode": "ASH", "value": 12.4}
	]
}`

func TestPing(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestCreateRecord(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.create(t, sampleRecord)

	assert.Equal(t, uint64(1), rec.ID)
	assert.InDelta(t, 5700.0, rec.WeightedResults["CV"], 1e-9)
	assert.InDelta(t, 12.4, rec.WeightedResults["ASH"], 1e-9)
	assert.Equal(t, model.Numeric("5500"), rec.Results[0].Value)
	assert.True(t, rec.Results[2].Weight.IsEmpty())
}

func TestCreateRecordRejected(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"results": [`},
		{"no results", `{"company": "Shenhua"}`},
		{"empty results", `{"results": []}`},
		{"bad item code", `{"results": [{"itemCode": "C V", "value": 1}]}`},
		{"missing item code", `{"results": [{"value": 1}]}`},
		{"boolean value", `{"results": [{"itemCode": "CV", "value": true}]}`},
		{"bad email", `{"email": "nope", "results": [{"itemCode": "CV", "value": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doJSON(http.MethodPost, "/api/testing-records", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	list, err := s.store.ListBy(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRecordValidationError(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.doJSON(http.MethodPost, "/api/testing-records",
		`{"results": [{"itemCode": "CV", "value": 1}, {"itemCode": "ASH", "value": "abc"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error    string `json:"error"`
		ItemCode string `json:"itemCode"`
		Field    string `json:"field"`
		Index    int    `json:"index"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ASH", body.ItemCode)
	assert.Equal(t, "value", body.Field)
	assert.Equal(t, 1, body.Index)
	assert.NotEmpty(t, body.Error)
}

func TestCreateRecordZeroTotalWeight(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.doJSON(http.MethodPost, "/api/testing-records",
		`{"results": [{"itemCode": "CV", "value": 1, "weight": 0}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"itemCode":"CV"`)
	assert.Contains(t, w.Body.String(), `"index":-1`)
}

func TestGetRecord(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.create(t, sampleRecord)

	w := s.do(http.MethodGet, "/api/testing-records/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.TestingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, rec.WeightedResults, got.WeightedResults)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/testing-records/2", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/testing-records/abc", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/testing-records/0", nil, "").Code)
}

func TestListRecords(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)
	s.create(t, `{"company": "Yitai", "coalType": "coking", "results": [{"itemCode": "S", "value": "0.6"}]}`)

	list := func(query string) []model.TestingRecord {
		w := s.do(http.MethodGet, "/api/testing-records"+query, nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Records []model.TestingRecord `json:"records"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Records
	}

	assert.Len(t, list(""), 2)
	assert.Len(t, list("?company=shenhua"), 1)
	assert.Len(t, list("?itemCode=S"), 1)
	assert.Len(t, list("?coalType=thermal&itemCode=S"), 0)
	paged := list("?limit=1&offset=1")
	require.Len(t, paged, 1)
	assert.Equal(t, "Yitai", paged[0].Company)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/testing-records?limit=-1", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/testing-records?offset=x", nil, "").Code)
}

func TestListRecordsEmpty(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/api/testing-records", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"records":[]}`, w.Body.String())
}

func TestUpdateRecord(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	w := s.doJSON(http.MethodPut, "/api/testing-records/1", `{"note": "resampled"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec model.TestingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "resampled", rec.Note)
	assert.Equal(t, "Shenhua", rec.Company)
	assert.InDelta(t, 5700.0, rec.WeightedResults["CV"], 1e-9)

	w = s.doJSON(http.MethodPut, "/api/testing-records/1",
		`{"results": [{"itemCode": "CV", "value": 10, "weight": 1}, {"itemCode": "CV", "value": 20, "weight": 3}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec = model.TestingRecord{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, map[string]float64{"CV": 17.5}, rec.WeightedResults)

	w = s.doJSON(http.MethodPut, "/api/testing-records/1", `{"results": []}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"weightedResults":null`)
}

func TestUpdateRecordInvalidKeepsStored(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	w := s.doJSON(http.MethodPut, "/api/testing-records/1",
		`{"company": "Yitai", "results": [{"itemCode": "CV", "value": "NaN"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := s.store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Shenhua", stored.Company)
	assert.Len(t, stored.Results, 3)

	assert.Equal(t, http.StatusNotFound,
		s.doJSON(http.MethodPut, "/api/testing-records/9", `{"note": "x"}`).Code)
}

func TestRecomputeRecord(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	w := s.do(http.MethodPost, "/api/testing-records/1/recompute", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		WeightedResults map[string]float64 `json:"weightedResults"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 5700.0, body.WeightedResults["CV"], 1e-9)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/testing-records/5/recompute", nil, "").Code)
}

func TestDeleteRecord(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/testing-records/1", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/testing-records/1", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/testing-records/1", nil, "").Code)
}

func TestParameters(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/parameters", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"CV"`)

	w = s.do(http.MethodGet, "/api/parameters/ash", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ASH"`)

	w = s.do(http.MethodGet, "/api/parameters/ASHH", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown parameter","suggestion":"ASH"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/parameters/MOISTURE", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"unknown parameter"}`, w.Body.String())
}

func TestImportAndExport(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Item", "Value", "Weight"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"S", 0.5, 1}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"S", 0.8, 2}))
	var xlsx bytes.Buffer
	require.NoError(t, f.Write(&xlsx))
	require.NoError(t, f.Close())

	body, contentType := multipartFile(t, "results.xlsx", xlsx.Bytes())
	w := s.do(http.MethodPost, "/api/testing-records/1/results/import", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec model.TestingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.Len(t, rec.WeightedResults, 1)
	assert.InDelta(t, 0.7, rec.WeightedResults["S"], 1e-9)

	w = s.do(http.MethodGet, "/api/testing-records/1/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "testing-record-1.xlsx")
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	results, err := sheet.ImportResults(w.Body)
	require.NoError(t, err)
	assert.Equal(t, rec.Results, results)
}

func TestImportRejected(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	body, contentType := multipartFile(t, "results.csv", []byte("S,1\n"))
	w := s.do(http.MethodPost, "/api/testing-records/1/results/import", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/testing-records/1/results/import", strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big, contentType := multipartFile(t, "big.xlsx", bytes.Repeat([]byte("x"), 128<<10))
	w = s.do(http.MethodPost, "/api/testing-records/1/results/import", big, contentType)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAttachments(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	body, contentType := multipartFile(t, "certificate.pdf", []byte("%PDF-1.4 lab"))
	w := s.do(http.MethodPost, "/api/testing-records/1/attachments", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var att model.Attachment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &att))
	assert.Equal(t, "certificate.pdf", att.Name)
	assert.Equal(t, int64(12), att.Size)
	assert.NotEmpty(t, att.ID)

	w = s.do(http.MethodGet, "/api/testing-records/1/attachments/"+att.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 lab", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "certificate.pdf")

	stored, err := s.store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored.Attachments, 1)
	assert.InDelta(t, 5700.0, stored.WeightedResults["CV"], 1e-9)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/testing-records/1/attachments/none", nil, "").Code)

	body, contentType = multipartFile(t, "x.pdf", []byte("x"))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/testing-records/7/attachments", body, contentType).Code)

	big, contentType := multipartFile(t, "big.pdf", bytes.Repeat([]byte("x"), 128<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, s.do(http.MethodPost, "/api/testing-records/1/attachments", big, contentType).Code)
}

func TestDeleteRecordRemovesAttachments(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)

	body, contentType := multipartFile(t, "certificate.pdf", []byte("%PDF-1.4 lab"))
	w := s.do(http.MethodPost, "/api/testing-records/1/attachments", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var att model.Attachment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &att))
	assert.Equal(t, []string{model.AttachmentKey(1, att.ID)}, s.storedFiles(t))

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/testing-records/1", nil, "").Code)
	assert.Empty(t, s.storedFiles(t))
}

func TestAttachmentAddFailureRemovesUpload(t *testing.T) {
	s := newTestServer(t, nil)
	s.create(t, sampleRecord)
	s.store.failPut.Store(true)

	body, contentType := multipartFile(t, "certificate.pdf", []byte("%PDF-1.4 lab"))
	w := s.do(http.MethodPost, "/api/testing-records/1/attachments", body, contentType)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, s.storedFiles(t))
}

func TestCreateRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1, clockwork.NewFakeClock())
	s := newTestServer(t, limiter.Middleware())

	s.create(t, sampleRecord)
	w := s.doJSON(http.MethodPost, "/api/testing-records", sampleRecord)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/testing-records/1", nil, "").Code)
}
