package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ngoyal88/quip/pkg/annotate"
	"github.com/ngoyal88/quip/pkg/cache"
	"github.com/ngoyal88/quip/pkg/storage"
)

type fakeEngine struct {
	cleared int
}

func (f *fakeEngine) Status(ctx context.Context) annotate.Status {
	return annotate.Status{Level: "savage", Cache: cache.Stats{Size: 3, Capacity: 10, HitRate: 0.5}}
}

func (f *fakeEngine) ClearCache() { f.cleared++ }

func newTestServer(t *testing.T, adminKey string, store storage.Store) (*httptest.Server, *fakeEngine) {
	t.Helper()
	eng := &fakeEngine{}
	srv := httptest.NewServer(NewServer(eng, store, adminKey, zerolog.Nop()).Routes())
	t.Cleanup(srv.Close)
	return srv, eng
}

func do(t *testing.T, method, url, key string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, "secret", storage.NewMemoryStore(10, 0))
	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "healthy" || body["journal"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestStatusRequiresAdminKey(t *testing.T) {
	srv, _ := newTestServer(t, "secret", nil)

	if resp := do(t, http.MethodGet, srv.URL+"/status", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/status", "wrong"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", resp.StatusCode)
	}

	resp := do(t, http.MethodGet, srv.URL+"/status", "secret")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var st annotate.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Level != "savage" || st.Cache.Size != 3 {
		t.Errorf("Status = %+v", st)
	}
}

func TestOpenWithoutAdminKey(t *testing.T) {
	srv, _ := newTestServer(t, "", nil)
	if resp := do(t, http.MethodGet, srv.URL+"/status", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestClearCache(t *testing.T) {
	srv, eng := newTestServer(t, "k", nil)
	if resp := do(t, http.MethodGet, srv.URL+"/cache/clear", "k"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, srv.URL+"/cache/clear", "k"); resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d", resp.StatusCode)
	}
	if eng.cleared != 1 {
		t.Errorf("ClearCache called %d times", eng.cleared)
	}
}

func TestJournalEndpoints(t *testing.T) {
	store := storage.NewMemoryStore(10, 0)
	ctx := context.Background()
	first := &storage.Record{Text: "one", Origin: "local", Level: "mild"}
	store.SaveRecord(ctx, first)
	store.SaveRecord(ctx, &storage.Record{Text: "two", Origin: "remote", Level: "mild"})

	srv, _ := newTestServer(t, "", store)

	resp := do(t, http.MethodGet, srv.URL+"/journal?limit=1", "")
	var list struct {
		Records []storage.Record `json:"records"`
		Count   int              `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	if list.Count != 1 || list.Records[0].Text != "two" {
		t.Errorf("journal = %+v", list)
	}

	resp = do(t, http.MethodGet, srv.URL+"/journal?origin=local", "")
	json.NewDecoder(resp.Body).Decode(&list)
	if list.Count != 1 || list.Records[0].Text != "one" {
		t.Errorf("journal?origin=local = %+v", list)
	}

	resp = do(t, http.MethodGet, srv.URL+"/journal/"+first.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET record status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/journal/nope", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing record status = %d, want 404", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, srv.URL+"/journal/stats", "")
	var stats storage.Stats
	json.NewDecoder(resp.Body).Decode(&stats)
	if stats.Total != 2 || stats.ByOrigin["remote"] != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if resp := do(t, http.MethodGet, srv.URL+"/journal?limit=-3", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestJournalDisabled(t *testing.T) {
	srv, _ := newTestServer(t, "", nil)
	if resp := do(t, http.MethodGet, srv.URL+"/journal", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "secret", nil)
	resp := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
}
