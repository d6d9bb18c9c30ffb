package notifiers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/strandlab/foldsim/internal/kinetics"
)

func TestWebhookNotifierPostsEvent(t *testing.T) {
	var gotBody []byte
	var gotContentType, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("hook-1", srv.URL)
	n.SetHeader("Authorization", "Bearer test-token")

	ev := kinetics.TrajectoryEvent{TrajectoryID: "t1", Step: 42, Terminal: true}
	if err := n.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	var decoded kinetics.TrajectoryEvent
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("decoding posted body: %v", err)
	}
	if decoded.TrajectoryID != "t1" || decoded.Step != 42 || !decoded.Terminal {
		t.Errorf("posted event = %+v", decoded)
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("hook-1", srv.URL)
	if err := n.Notify(context.Background(), kinetics.TrajectoryEvent{}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestWebhookNotifierUnreachable(t *testing.T) {
	n := NewWebhookNotifier("hook-1", "http://127.0.0.1:1/never")
	if err := n.Notify(context.Background(), kinetics.TrajectoryEvent{}); err == nil {
		t.Error("expected error for unreachable endpoint")
	}
}

func TestWebhookNotifierIdentity(t *testing.T) {
	n := NewWebhookNotifier("hook-1", "http://example.com")
	if n.ID() != "hook-1" || n.Type() != "webhook" {
		t.Errorf("identity = %s/%s", n.ID(), n.Type())
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
