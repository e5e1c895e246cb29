package threatintel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "gravitywatch/internal/platform/errors"
)

func newFeed(t *testing.T, listings map[string]hostResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		host := r.PostForm.Get("host")
		if resp, ok := listings[host]; ok {
			json.NewEncoder(w).Encode(resp)
			return
		}
		json.NewEncoder(w).Encode(hostResponse{QueryStatus: "no_results"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyBatchMapsListings(t *testing.T) {
	t.Parallel()

	srv := newFeed(t, map[string]hostResponse{
		"c2.test": {QueryStatus: "ok", URLs: []struct {
			Threat    string `json:"threat"`
			URLStatus string `json:"url_status"`
		}{{Threat: "malware_download", URLStatus: "online"}}},
		"old.test": {QueryStatus: "ok", URLs: []struct {
			Threat    string `json:"threat"`
			URLStatus string `json:"url_status"`
		}{{Threat: "malware_download", URLStatus: "offline"}}},
	})

	b := New(Config{BaseURL: srv.URL})
	got, err := b.ClassifyBatch(context.Background(), []string{"c2.test", "old.test", "ok.test"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("verdicts: %v", got)
	}
	if got[0].Category != "malicious" || !strings.Contains(got[0].Reason, "malware_download") {
		t.Fatalf("listed: %+v", got[0])
	}
	if got[1].Category != "suspicious" {
		t.Fatalf("stale listing: %+v", got[1])
	}
	if got[2].Category != "benign" {
		t.Fatalf("miss: %+v", got[2])
	}
}

func TestClassifyBatchFeedDown(t *testing.T) {
	t.Parallel()

	srv := newFeed(t, nil)
	srv.Close()

	b := New(Config{BaseURL: srv.URL})
	_, err := b.ClassifyBatch(context.Background(), []string{"a.test"})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err: %v", err)
	}
}

func TestClassifyBatchThrottled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	b := New(Config{BaseURL: srv.URL})
	_, err := b.ClassifyBatch(context.Background(), []string{"a.test"})
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) || !perr.Retryable(err) {
		t.Fatalf("err: %v", err)
	}
}
