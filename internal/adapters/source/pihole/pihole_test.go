package pihole

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "gravitywatch/internal/platform/errors"
)

func newTestServer(t *testing.T, queries []map[string]any) (*httptest.Server, *struct{ deletes int }) {
	t.Helper()
	state := &struct{ deletes int }{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["password"] != "hunter2" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"session": map[string]any{"valid": false, "message": "wrong password"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"session": map[string]any{"valid": true, "sid": "s3ss10n"},
			})
		case http.MethodDelete:
			if r.Header.Get("sid") == "s3ss10n" {
				state.deletes++
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/queries", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("sid") != "s3ss10n" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"queries": queries})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, state
}

func TestFetchFiltersAndNormalizes(t *testing.T) {
	t.Parallel()

	srv, state := newTestServer(t, []map[string]any{
		{"time": 100.0, "domain": "Old.test", "client": map[string]string{"ip": "10.0.0.1"}},
		{"time": 101.5, "domain": "NEW.test", "type": "A", "status": "FORWARDED",
			"client": map[string]string{"ip": "10.0.0.2"}, "upstream": "1.1.1.1"},
		{"time": 102.0, "domain": "", "client": map[string]string{"ip": "10.0.0.3"}},
	})

	c := New(Config{BaseURL: srv.URL, Password: "hunter2"})
	got, err := c.Fetch(context.Background(), time.Unix(100, 0).UTC())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("records: %v", got)
	}
	r := got[0]
	if r.Domain != "new.test" || r.Client != "10.0.0.2" || r.Upstream != "1.1.1.1" {
		t.Fatalf("record: %+v", r)
	}
	if !r.Timestamp.Equal(time.Unix(101, 0).UTC()) {
		t.Fatalf("timestamp: %v", r.Timestamp)
	}
	if state.deletes != 1 {
		t.Fatalf("session not released: %d", state.deletes)
	}
}

func TestFetchAuthRejection(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	c := New(Config{BaseURL: srv.URL, Password: "wrong"})
	_, err := c.Fetch(context.Background(), time.Unix(0, 0))
	if !perr.IsCode(err, perr.ErrorCodeSourceUnavailable) {
		t.Fatalf("err: %v", err)
	}
}

func TestFetchServerDown(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	srv.Close()

	c := New(Config{BaseURL: srv.URL, Password: "hunter2"})
	_, err := c.Fetch(context.Background(), time.Unix(0, 0))
	if !perr.IsCode(err, perr.ErrorCodeSourceUnavailable) {
		t.Fatalf("err: %v", err)
	}
}
