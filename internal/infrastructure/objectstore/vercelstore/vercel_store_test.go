package vercelstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
)

// fakeBlobAPI эмулирует PUT /<pathname> и GET /?prefix= с постраничной выдачей.
type fakeBlobAPI struct {
	mu       sync.Mutex
	token    string
	pageSize int
	blobs    map[string][]byte
	headers  http.Header
}

func (f *fakeBlobAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":"forbidden","message":"Access denied"}}`)
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		pathname := strings.TrimPrefix(r.URL.Path, "/")
		f.blobs[pathname] = body
		f.headers = r.Header.Clone()
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url":      "https://store.public.blob.vercel-storage.com/" + pathname,
			"pathname": pathname,
		})
	case http.MethodGet:
		prefix := r.URL.Query().Get("prefix")
		var matched []string
		for name := range f.blobs {
			if strings.HasPrefix(name, prefix) {
				matched = append(matched, name)
			}
		}
		sort.Strings(matched)
		start := 0
		if c := r.URL.Query().Get("cursor"); c != "" {
			for i, name := range matched {
				if name == c {
					start = i
				}
			}
		}
		end := start + f.pageSize
		if end > len(matched) {
			end = len(matched)
		}
		type blob struct {
			URL      string `json:"url"`
			Pathname string `json:"pathname"`
		}
		page := struct {
			Blobs   []blob `json:"blobs"`
			Cursor  string `json:"cursor,omitempty"`
			HasMore bool   `json:"hasMore"`
		}{Blobs: []blob{}}
		for _, name := range matched[start:end] {
			page.Blobs = append(page.Blobs, blob{URL: "https://store.public.blob.vercel-storage.com/" + name, Pathname: name})
		}
		if end < len(matched) {
			page.HasMore = true
			page.Cursor = matched[end]
		}
		_ = json.NewEncoder(w).Encode(page)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setupStore(t *testing.T, pageSize int) (*Store, *fakeBlobAPI) {
	t.Helper()
	api := &fakeBlobAPI{token: "test-token", pageSize: pageSize, blobs: make(map[string][]byte)}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", 5*time.Second), api
}

func TestStore_Put(t *testing.T) {
	store, api := setupStore(t, 10)
	content := []byte("{\n  \"how_many\": \"Single\"\n}\n")

	url, err := store.Put(context.Background(), "proposals/AB12CD.json", content, repository.PutOptions{
		Public:      true,
		ContentType: "application/json; charset=utf-8",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://store.public.blob.vercel-storage.com/proposals/AB12CD.json", url)
	assert.Equal(t, content, api.blobs["proposals/AB12CD.json"])
	assert.Equal(t, "0", api.headers.Get("x-add-random-suffix"))
	assert.Equal(t, "application/json; charset=utf-8", api.headers.Get("x-content-type"))
	assert.Equal(t, apiVersion, api.headers.Get("x-api-version"))
}

func TestStore_PutRejectsPrivate(t *testing.T) {
	store, _ := setupStore(t, 10)

	_, err := store.Put(context.Background(), "proposals/AB12CD.json", []byte("{}"), repository.PutOptions{})
	assert.Error(t, err)
}

func TestStore_ListFollowsCursor(t *testing.T) {
	store, api := setupStore(t, 2)
	for _, name := range []string{"proposals/AAA001.json", "proposals/AAA002.json", "proposals/AAA003.json", "proposals/BBB001.json"} {
		api.blobs[name] = []byte("{}")
	}

	objects, err := store.List(context.Background(), "proposals/AAA")
	require.NoError(t, err)

	var names []string
	for _, o := range objects {
		names = append(names, o.Pathname)
		assert.True(t, strings.HasPrefix(o.URL, "https://store.public.blob.vercel-storage.com/"))
	}
	assert.ElementsMatch(t, []string{"proposals/AAA001.json", "proposals/AAA002.json", "proposals/AAA003.json"}, names)
}

func TestStore_BadToken(t *testing.T) {
	store, _ := setupStore(t, 10)
	store.client.SetAuthToken("wrong")

	_, err := store.List(context.Background(), "proposals/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access denied")
}
