package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-intake/internal/domain/entity"
	"github.com/ignatzorin/proposal-intake/internal/domain/formfield"
	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/http/middleware"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore/fsstore"
	"github.com/ignatzorin/proposal-intake/internal/interface/http/forminput"
	"github.com/ignatzorin/proposal-intake/internal/metrics"
	"github.com/ignatzorin/proposal-intake/internal/usecase/proposal"
)

const testBaseURL = "http://intake.test"

var (
	fixedNow    = time.Date(2025, 3, 4, 15, 6, 7, 89_000_000, time.UTC)
	codePattern = regexp.MustCompile(`class="code">([A-Z0-9]{6})<`)
)

type testServer struct {
	engine  *gin.Engine
	handler *ProposalHandler
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, store repository.ObjectStore, cfg ProposalHandlerConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = testBaseURL
	}
	m := metrics.New(prometheus.NewRegistry())
	h := NewProposalHandler(
		forminput.NewDecoder(4096),
		proposal.NewStoreProposalUseCase(store),
		proposal.NewLookupProposalUseCase(store),
		m,
		cfg,
	)
	h.now = func() time.Time { return fixedNow }

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.ErrorHandler())
	r.Any("/proposal", h.Submit)
	r.GET("/p/:code", h.Lookup)
	if reader, ok := store.(repository.ObjectReader); ok {
		r.GET("/blobs/*key", NewBlobHandler(reader).Get)
	}
	return &testServer{engine: r, handler: h, metrics: m}
}

func newFSStore(t *testing.T) *fsstore.Store {
	t.Helper()
	store, err := fsstore.New(t.TempDir(), testBaseURL)
	require.NoError(t, err)
	return store
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/proposal", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func extractCode(t *testing.T, html string) string {
	t.Helper()
	m := codePattern.FindStringSubmatch(html)
	require.Len(t, m, 2, "confirmation page has no code: %s", html)
	return m[1]
}

type failingStore struct{ err error }

func (f failingStore) Put(ctx context.Context, key string, content []byte, opts repository.PutOptions) (string, error) {
	return "", f.err
}

func (f failingStore) List(ctx context.Context, prefix string) ([]repository.Object, error) {
	return nil, f.err
}

func TestSubmit_StoreThenLookupRoundTrip(t *testing.T) {
	store := newFSStore(t)
	srv := newTestServer(t, store, ProposalHandlerConfig{Mode: ModeStore})

	body := `{"firstname":"Ann","typea12":["(MA) Medicare Advantage"],"maPlan":"H1234-001","maPlan3":"H5678-002","id":"5900"}`
	w := srv.do(postJSON(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	code := extractCode(t, w.Body.String())
	assert.Contains(t, w.Body.String(), testBaseURL+"/p/"+code)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.Stored))

	// Поиск по коду в нижнем регистре
	w = srv.do(httptest.NewRequest(http.MethodGet, "/p/"+strings.ToLower(code), nil))
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Equal(t, testBaseURL+"/blobs/proposals/"+code+".json", location)

	target, err := url.Parse(location)
	require.NoError(t, err)
	w = srv.do(httptest.NewRequest(http.MethodGet, target.Path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	raw := formfield.RawInput{
		"firstname":  "Ann",
		"typea12[0]": "(MA) Medicare Advantage",
		"maPlan":     "H1234-001",
		"maPlan3":    "H5678-002",
		"id":         "5900",
	}
	expected, err := proposal.Encode(entity.NewProposal(raw, fixedNow).WithClientIP("192.0.2.1"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), w.Body.String())

	var doc entity.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "MA", doc.Client1.CurrentCoverage)
	assert.Equal(t, []string{"H1234-001", "H5678-002"}, doc.Client1.MACodes)
	assert.Equal(t, "5900", doc.Meta.SubmissionID)
	assert.Equal(t, "2025-03-04T15:06:07.089Z", doc.Meta.SubmittedUTC)
}

func TestSubmit_MalformedJSONStillSucceeds(t *testing.T) {
	store := newFSStore(t)
	srv := newTestServer(t, store, ProposalHandlerConfig{Mode: ModeStore})

	w := srv.do(postJSON(`{"firstname": "Ann"`))

	require.Equal(t, http.StatusOK, w.Code)
	code := extractCode(t, w.Body.String())

	content, _, err := store.Get(context.Background(), "proposals/"+code+".json")
	require.NoError(t, err)

	var doc entity.Proposal
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.NotEmpty(t, doc.Raw[forminput.ParseErrorKey])
	assert.Equal(t, `{"firstname": "Ann"`, doc.Raw[forminput.RawBodyKey])
	assert.Equal(t, "Single", doc.HowMany)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.ParseErrors.WithLabelValues(forminput.EncodingJSON)))
}

func TestSubmit_DownloadMode(t *testing.T) {
	srv := newTestServer(t, failingStore{err: errors.New("must not be called")}, ProposalHandlerConfig{Mode: ModeDownload})

	req := httptest.NewRequest(http.MethodGet, "/proposal?firstname=Ann&howmany=Joint&firstname2=Bob", nil)
	w := srv.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="proposal.json"`, w.Header().Get("Content-Disposition"))

	var doc entity.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Joint", doc.HowMany)
	assert.Equal(t, "Ann", doc.Client1.FirstName)
	assert.Equal(t, "Bob", doc.Client2.FirstName)
	assert.Equal(t, "192.0.2.1", doc.Meta.IP)
	assert.True(t, strings.HasPrefix(w.Body.String(), "{\n  \"how_many\""))
}

func TestSubmit_RedirectMode(t *testing.T) {
	srv := newTestServer(t, failingStore{err: errors.New("must not be called")}, ProposalHandlerConfig{
		Mode:          ModeRedirect,
		RedirectURL:   "https://www.medicare.gov/plan-compare/",
		RedirectDelay: 3 * time.Second,
	})

	w := srv.do(httptest.NewRequest(http.MethodGet, "/proposal?firstname=Ann", nil))

	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, `href="https://www.medicare.gov/plan-compare/"`)
	assert.Contains(t, html, "3000")
	assert.Contains(t, html, "setTimeout")
	assert.Contains(t, html, "&#34;first_name&#34;: &#34;Ann&#34;")
}

func TestSubmit_RedirectModeEscapesDocument(t *testing.T) {
	srv := newTestServer(t, failingStore{err: errors.New("must not be called")}, ProposalHandlerConfig{Mode: ModeRedirect})

	w := srv.do(httptest.NewRequest(http.MethodGet, "/proposal?firstname=%3C%2Fscript%3E%3Cb%3ETom+%26+Jerry", nil))

	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Equal(t, 1, strings.Count(html, "</script>"))
	assert.NotContains(t, html, "<b>")
}

func TestSubmit_DownloadModeKeepsHTMLCharacters(t *testing.T) {
	srv := newTestServer(t, failingStore{err: errors.New("must not be called")}, ProposalHandlerConfig{Mode: ModeDownload})

	w := srv.do(httptest.NewRequest(http.MethodGet, "/proposal?firstname=Tom+%26+Jerry", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"first_name": "Tom & Jerry"`)
}

func TestSubmit_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, newFSStore(t), ProposalHandlerConfig{})

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := srv.do(httptest.NewRequest(method, "/proposal", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "GET, POST", w.Header().Get("Allow"))
		assert.JSONEq(t, `{"error":"method not allowed","code":"METHOD_NOT_ALLOWED"}`, w.Body.String())
	}
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, newFSStore(t), ProposalHandlerConfig{})

	w := srv.do(postJSON(`{"firstname":"` + strings.Repeat("a", 8192) + `"}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSubmit_StoreFailureIsMasked(t *testing.T) {
	srv := newTestServer(t, failingStore{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}, ProposalHandlerConfig{Mode: ModeStore})

	w := srv.do(postJSON(`{"firstname":"Ann"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestLookup_UnknownCode(t *testing.T) {
	srv := newTestServer(t, newFSStore(t), ProposalHandlerConfig{})

	for _, code := range []string{"ZZZZZZ", "abc", "TOOLONGCODE"} {
		w := srv.do(httptest.NewRequest(http.MethodGet, "/p/"+code, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, code)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(srv.metrics.Lookups.WithLabelValues("not_found")))
}

func TestLookup_StoreFailure(t *testing.T) {
	srv := newTestServer(t, failingStore{err: errors.New("boom")}, ProposalHandlerConfig{})

	w := srv.do(httptest.NewRequest(http.MethodGet, "/p/ABC123", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.Lookups.WithLabelValues("error")))
}
