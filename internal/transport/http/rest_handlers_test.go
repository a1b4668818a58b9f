package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/huddlechat/huddle-server/internal/proto"
	"github.com/huddlechat/huddle-server/internal/store/sqlite"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestCreateUserEndpoint(t *testing.T) {
	ts := startTestServer(t)

	post := func(body string) (*http.Response, error) {
		return ts.Client().Post(ts.URL+"/api/users", "application/json", bytes.NewBufferString(body))
	}

	resp, err := post(`{"username":"alice"}`)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var first UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if first.Username != "alice" || first.ID == 0 {
		t.Fatalf("unexpected user: %+v", first)
	}

	// Posting the same username again returns the existing user.
	resp2, err := post(`{"username":"alice"}`)
	if err != nil {
		t.Fatalf("create user again: %v", err)
	}
	defer resp2.Body.Close()

	var second UserResponse
	if err := json.NewDecoder(resp2.Body).Decode(&second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same user id, got %d and %d", first.ID, second.ID)
	}

	resp3, err := post(`{}`)
	if err != nil {
		t.Fatalf("create user with empty body: %v", err)
	}
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing username, got %d", resp3.StatusCode)
	}
}

func TestListMessagesEndpoint(t *testing.T) {
	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	alice, err := st.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, content := range []string{"one", "two", "three"} {
		if _, err := st.CreateMessage(ctx, content, alice.ID); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	ts := newServerForStore(t, st)

	resp, err := ts.Client().Get(ts.URL + "/api/messages")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	defer resp.Body.Close()

	var messages []proto.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 3 || messages[0].Content != "one" || messages[2].Content != "three" {
		t.Fatalf("unexpected messages: %+v", messages)
	}

	// An explicit limit keeps the newest messages, still oldest first.
	resp2, err := ts.Client().Get(ts.URL + "/api/messages?limit=2")
	if err != nil {
		t.Fatalf("list messages with limit: %v", err)
	}
	defer resp2.Body.Close()

	var window []proto.Message
	if err := json.NewDecoder(resp2.Body).Decode(&window); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(window) != 2 || window[0].Content != "two" || window[1].Content != "three" {
		t.Fatalf("unexpected window: %+v", window)
	}
}
