package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticToken("tok-123"))
}

func TestClient_BearerHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := c.ListSessions(context.Background(), "p1"); err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestClient_ConfirmPlan_Routing(t *testing.T) {
	tests := []struct {
		name     string
		planData string
		wantPath string
	}{
		{
			name:     "single routes to execute-plan",
			planData: `{"type":"single","workflow_name":"bwa"}`,
			wantPath: "/projects/p1/chat/execute-plan",
		},
		{
			name:     "missing type routes to execute-plan",
			planData: `{"strategy":"x"}`,
			wantPath: "/projects/p1/chat/execute-plan",
		},
		{
			name:     "multi routes to execute-chain",
			planData: `{"type":"multi","steps":[{"step":1,"tool":"fastqc"}]}`,
			wantPath: "/projects/p1/chat/execute-chain",
		},
		{
			name:     "tool_choice routes to execute-plan",
			planData: `{"type":"tool_choice","matched_tools":[]}`,
			wantPath: "/projects/p1/chat/execute-plan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotBody ConfirmRequest
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				_ = json.NewDecoder(r.Body).Decode(&gotBody)
				_ = json.NewEncoder(w).Encode(ConfirmResponse{AnalysisID: "an-42"})
			})

			resp, err := c.ConfirmPlan(context.Background(), "p1", "s1", tt.planData)
			if err != nil {
				t.Fatalf("ConfirmPlan() error = %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotBody.PlanData != tt.planData || gotBody.SessionID != "s1" {
				t.Errorf("body = %+v", gotBody)
			}
			if resp.AnalysisID != "an-42" {
				t.Errorf("AnalysisID = %q", resp.AnalysisID)
			}
		})
	}
}

func TestClient_ConfirmPlan_InvalidPlan(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	if _, err := c.ConfirmPlan(context.Background(), "p1", "s1", "{broken"); err == nil {
		t.Error("ConfirmPlan() accepted malformed plan data")
	}
	if called {
		t.Error("malformed plan still reached the backend")
	}
}

func TestClient_AuthExpiredClearsToken(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	if err := store.Save("stale"); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, store)
	_, err := c.ListSessions(context.Background(), "p1")
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("error = %v, want ErrAuthExpired", err)
	}
	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("token survived a 401: %v", err)
	}
}

func TestClient_HTTPErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"session not found"}`))
	})

	err := c.DeleteSession(context.Background(), "nope")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.Status != http.StatusUnprocessableEntity || httpErr.Detail != "session not found" {
		t.Errorf("HTTPError = %+v", httpErr)
	}
}

func TestClient_StartStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/p1/chat/stream" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req StreamRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Message != "run QC" || req.SessionID != "s1" {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte("data: {\"type\":\"token\",\"content\":\"hi\"}\ndata: {\"type\":\"done\"}\n"))
	})

	body, err := c.StartStream(context.Background(), "p1", StreamRequest{
		Message:   "run QC",
		SessionID: "s1",
		ProjectID: "p1",
	})
	if err != nil {
		t.Fatalf("StartStream() error = %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty stream body")
	}
}

func TestClient_NoToken(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", StaticToken(""))
	if _, err := c.ListSessions(context.Background(), "p1"); !errors.Is(err, ErrNoToken) {
		t.Errorf("error = %v, want ErrNoToken", err)
	}
}

func TestFileTokenStore(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "sub", "token"))

	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("fresh store error = %v, want ErrNoToken", err)
	}
	if err := store.Save("abc"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	tok, err := store.Token()
	if err != nil || tok != "abc" {
		t.Errorf("Token() = %q, %v", tok, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
