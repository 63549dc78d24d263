package testutil

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// CreateSQLiteFixture creates a state database at dbPath. A non-empty
// sessionID is stored under the persisted session key.
func CreateSQLiteFixture(t *testing.T, dbPath, sessionID string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createItemTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if sessionID != "" {
		if _, err := db.Exec("INSERT INTO ItemTable (key, value) VALUES (?, ?)", "chatSessionId", sessionID); err != nil {
			t.Fatalf("Failed to insert session id: %v", err)
		}
	}
}

// FakeRecord is one stored message of the fake chat server
type FakeRecord struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// FakeChatRequest is the decoded body of a POST /chat
type FakeChatRequest struct {
	Message   string       `json:"message"`
	History   []FakeRecord `json:"history"`
	SessionID *string      `json:"session_id"`
}

// FakeServer is an httptest chat backend that stores history in memory the
// way the real service does: a chat with a session id records the user
// message and the reply.
type FakeServer struct {
	*httptest.Server

	mu        sync.Mutex
	histories map[string][]FakeRecord
	updated   map[string]time.Time
	requests  []FakeChatRequest

	// Reply produces the assistant reply; defaults to "echo: <message>"
	Reply func(message string) string
	// FailStatus makes every /chat call fail with this status and FailDetail
	FailStatus int
	FailDetail interface{}
	// FailDelete makes DELETE /history fail
	FailDelete bool
}

// NewFakeServer starts a FakeServer that is closed when the test ends
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()
	f := &FakeServer{
		histories: make(map[string][]FakeRecord),
		updated:   make(map[string]time.Time),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", f.handleChat)
	mux.HandleFunc("/history/", f.handleHistory)
	mux.HandleFunc("/sessions", f.handleSessions)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// Seed stores history for sessionID
func (f *FakeServer) Seed(sessionID string, updatedAt time.Time, records ...FakeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories[sessionID] = append(f.histories[sessionID], records...)
	f.updated[sessionID] = updatedAt
}

// History returns the stored history of sessionID
func (f *FakeServer) History(sessionID string) []FakeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeRecord(nil), f.histories[sessionID]...)
}

// Requests returns every /chat request received
func (f *FakeServer) Requests() []FakeChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeChatRequest(nil), f.requests...)
}

func (f *FakeServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}
	var req FakeChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if f.FailStatus != 0 {
		writeJSON(w, f.FailStatus, map[string]interface{}{"detail": f.FailDetail})
		return
	}

	reply := "echo: " + req.Message
	if f.Reply != nil {
		reply = f.Reply(req.Message)
	}
	if req.SessionID != nil && *req.SessionID != "" {
		id := *req.SessionID
		now := time.Now().UTC()
		ts := now.Format("2006-01-02 15:04:05")
		f.histories[id] = append(f.histories[id],
			FakeRecord{Role: "user", Content: req.Message, Timestamp: ts},
			FakeRecord{Role: "assistant", Content: reply, Timestamp: ts},
		)
		f.updated[id] = now
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (f *FakeServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/history/")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		history := f.histories[id]
		if history == nil {
			history = []FakeRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": id, "history": history})
	case http.MethodDelete:
		if f.FailDelete {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Failed to delete chat history"})
			return
		}
		delete(f.histories, id)
		delete(f.updated, id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "History deleted successfully", "session_id": id})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
	}
}

func (f *FakeServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	type session struct {
		SessionID string `json:"session_id"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}
	sessions := make([]session, 0, len(f.updated))
	for id, ts := range f.updated {
		stamp := ts.UTC().Format("2006-01-02 15:04:05")
		sessions = append(sessions, session{SessionID: id, CreatedAt: stamp, UpdatedAt: stamp})
	}
	// most recent first, ties by id
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt != sessions[j].UpdatedAt {
			return sessions[i].UpdatedAt > sessions[j].UpdatedAt
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
