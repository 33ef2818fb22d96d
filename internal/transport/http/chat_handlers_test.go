package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/chatapp/chatapp-server/internal/store"
)

func postForm(t *testing.T, handler stdhttp.Handler, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func get(t *testing.T, handler stdhttp.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(stdhttp.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestChatLifecycle(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	// Post three messages into r1.
	for _, m := range []struct{ user, text string }{
		{"alice", "hi"},
		{"alice", "yo"},
		{"bob", "hey"},
	} {
		resp := postForm(t, handler, stdhttp.MethodPost, "/api/chat/r1", url.Values{
			"username": {m.user},
			"msg":      {m.text},
		})
		if resp.Code != stdhttp.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
		}

		var msg store.Message
		if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if msg.ID == 0 {
			t.Error("expected assigned message id")
		}
		if msg.Room != "r1" || msg.Username != m.user || msg.Message != m.text {
			t.Errorf("unexpected message record: %+v", msg)
		}
		if msg.Date == "" || msg.Time == "" {
			t.Errorf("expected stamped date and time, got %q %q", msg.Date, msg.Time)
		}
	}

	// Transcript has three lines in store order.
	resp := get(t, handler, "/api/chat/r1")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	lines := strings.Split(resp.Body.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 transcript lines, got %d: %q", len(lines), resp.Body.String())
	}
	if !strings.HasSuffix(lines[0], "] alice: hi") {
		t.Errorf("unexpected first line %q", lines[0])
	}

	// Rename alice to alice2: two messages updated.
	resp = postForm(t, handler, stdhttp.MethodPut, "/api/chat/r1", url.Values{
		"old_username": {"alice"},
		"new_username": {"alice2"},
	})
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var renameResp RenameResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &renameResp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if renameResp.MessagesUpdated != 2 {
		t.Errorf("expected 2 messages updated, got %d", renameResp.MessagesUpdated)
	}
	if renameResp.OldUsername != "alice" || renameResp.NewUsername != "alice2" {
		t.Errorf("unexpected rename response: %+v", renameResp)
	}
	if !strings.Contains(renameResp.Message, "2 messages updated") {
		t.Errorf("unexpected rename message %q", renameResp.Message)
	}

	resp = get(t, handler, "/api/chat/r1")
	transcript := resp.Body.String()
	if got := strings.Count(transcript, "alice2:"); got != 2 {
		t.Errorf("expected alice2 on 2 lines, got %d: %q", got, transcript)
	}
	if !strings.Contains(transcript, "bob: hey") {
		t.Error("expected bob's line to survive the rename")
	}

	// Clear the room: three messages removed.
	resp = postForm(t, handler, stdhttp.MethodDelete, "/api/chat/r1", url.Values{})
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var clearResp map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &clearResp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if clearResp["message"] != "Chat history deleted. 3 messages removed." {
		t.Errorf("unexpected clear message %q", clearResp["message"])
	}

	// Empty room yields an empty transcript, not an error.
	resp = get(t, handler, "/api/chat/r1")
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Body.String() != "" {
		t.Errorf("expected empty transcript, got %q", resp.Body.String())
	}
}

func TestPostMessageMissingFields(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing message", url.Values{"username": {"alice"}}},
		{"missing username", url.Values{"msg": {"hi"}}},
		{"missing both", url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postForm(t, handler, stdhttp.MethodPost, "/api/chat/r1", tt.form)
			if resp.Code != stdhttp.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", resp.Code)
			}

			var errResp ErrorResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if errResp.Error != "Username and message are required" {
				t.Errorf("unexpected error %q", errResp.Error)
			}
		})
	}
}

func TestRenameUserErrors(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	seed := postForm(t, handler, stdhttp.MethodPost, "/api/chat/r1", url.Values{
		"username": {"alice"},
		"msg":      {"hi"},
	})
	if seed.Code != stdhttp.StatusCreated {
		t.Fatalf("seed post failed: %d", seed.Code)
	}
	seed = postForm(t, handler, stdhttp.MethodPost, "/api/chat/r1", url.Values{
		"username": {"bob"},
		"msg":      {"hey"},
	})
	if seed.Code != stdhttp.StatusCreated {
		t.Fatalf("seed post failed: %d", seed.Code)
	}

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing new_username",
			form:       url.Values{"old_username": {"alice"}},
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "Both old_username and new_username are required",
		},
		{
			name:       "missing old_username",
			form:       url.Values{"new_username": {"alice"}},
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "Both old_username and new_username are required",
		},
		{
			name:       "same name",
			form:       url.Values{"old_username": {"x"}, "new_username": {"x"}},
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "New username must be different from current username",
		},
		{
			name:       "name conflict",
			form:       url.Values{"old_username": {"alice"}, "new_username": {"bob"}},
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "Username already exists in this room",
		},
		{
			name:       "conflict beats not-found",
			form:       url.Values{"old_username": {"ghost"}, "new_username": {"bob"}},
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "Username already exists in this room",
		},
		{
			name:       "no messages for old name",
			form:       url.Values{"old_username": {"ghost"}, "new_username": {"phantom"}},
			wantStatus: stdhttp.StatusNotFound,
			wantError:  "No messages found for this username in this room",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postForm(t, handler, stdhttp.MethodPut, "/api/chat/r1", tt.form)
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}

			var errResp ErrorResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if errResp.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, errResp.Error)
			}
		})
	}
}

func TestClearEmptyRoom(t *testing.T) {
	st := createTestStore(t)
	defer st.Close()
	handler := createTestServer(t, st)

	resp := postForm(t, handler, stdhttp.MethodDelete, "/api/chat/nothing-here", url.Values{})
	if resp.Code != stdhttp.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var clearResp map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &clearResp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if clearResp["message"] != "Chat history deleted. 0 messages removed." {
		t.Errorf("unexpected clear message %q", clearResp["message"])
	}
}
