package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devmarvs/pmboard/session"
)

func TestFlashPopClearsQueue(t *testing.T) {
	store := session.NewMemoryStore("pmboard_session", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.Get(req)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := Success(rec, sess, "Task created successfully!"); err != nil {
		t.Fatalf("add flash: %v", err)
	}
	if err := Error(rec, sess, "Failed to load developers"); err != nil {
		t.Fatalf("add flash: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req2.AddCookie(cookie)
	}
	sess2, err := store.Get(req2)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}

	peeked, err := Peek(sess2)
	if err != nil || len(peeked) != 2 {
		t.Fatalf("expected 2 queued messages, got %v (%v)", peeked, err)
	}

	rec2 := httptest.NewRecorder()
	messages, err := Pop(rec2, sess2)
	if err != nil {
		t.Fatalf("pop flash: %v", err)
	}
	if len(messages) != 2 || messages[0].Type != TypeSuccess || messages[1].Text != "Failed to load developers" {
		t.Fatalf("unexpected messages %+v", messages)
	}

	messages, err = Pop(httptest.NewRecorder(), sess2)
	if err != nil {
		t.Fatalf("second pop: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty queue, got %d", len(messages))
	}
}

func TestFlashQueueIsBounded(t *testing.T) {
	store := session.NewMemoryStore("pmboard_session", time.Hour)
	sess, _ := store.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()

	for i := 0; i < MaxMessages+3; i++ {
		if err := Warning(rec, sess, string(rune('a'+i))); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	messages, _ := Peek(sess)
	if len(messages) != MaxMessages {
		t.Fatalf("expected %d messages, got %d", MaxMessages, len(messages))
	}
	if messages[0].Text != "d" {
		t.Fatalf("expected oldest messages dropped, first is %q", messages[0].Text)
	}
}

func TestFlashKeepsPrincipal(t *testing.T) {
	store := session.NewMemoryStore("pmboard_session", time.Hour)
	sess, _ := store.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	sess.Set(session.KeyToken, "tok")
	rec := httptest.NewRecorder()

	if err := Success(rec, sess, "saved"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := Pop(rec, sess); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if sess.Get(session.KeyToken) != "tok" {
		t.Fatalf("expected other session values untouched")
	}
}

func TestFlashRequiresSession(t *testing.T) {
	if err := Success(httptest.NewRecorder(), nil, "x"); err != ErrSessionMissing {
		t.Fatalf("expected ErrSessionMissing, got %v", err)
	}
}
