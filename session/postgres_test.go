package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	data    []byte
	expires *time.Time
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.data
	*(dest[1].(**time.Time)) = r.expires
	return nil
}

type fakeQuerier struct {
	mu   sync.Mutex
	rows map[string]fakeRow
	sql  []string
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sql = append(q.sql, sql)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		row := fakeRow{data: []byte(args[1].(string))}
		if expires, ok := args[2].(*time.Time); ok {
			row.expires = expires
		}
		q.rows[args[0].(string)] = row
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "DELETE") && strings.Contains(sql, "id = $1"):
		delete(q.rows, args[0].(string))
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag(""), nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	row, ok := q.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func TestPostgresStoreLifecycle(t *testing.T) {
	db := &fakeQuerier{rows: map[string]fakeRow{}}
	store, err := NewPostgresStore(PostgresOptions{DB: db, TTL: time.Hour})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.EnsureTable(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if !strings.Contains(db.sql[0], DefaultPostgresTable) {
		t.Fatalf("expected default table in DDL")
	}

	sess, err := store.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sess.Set("token", "abc")
	rec := httptest.NewRecorder()
	if err := sess.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	var stored map[string]string
	if err := json.Unmarshal(db.rows[sess.ID].data, &stored); err != nil || stored["token"] != "abc" {
		t.Fatalf("expected stored payload, got %v (%v)", stored, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	loaded, err := store.Get(req)
	if err != nil || loaded.Get("token") != "abc" {
		t.Fatalf("expected loaded session, err=%v", err)
	}

	loaded.Clear(httptest.NewRecorder())
	if len(db.rows) != 0 {
		t.Fatalf("expected row deleted")
	}
}

func TestPostgresStoreExpired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	db := &fakeQuerier{rows: map[string]fakeRow{"old": {data: []byte(`{"token":"abc"}`), expires: &past}}}
	store, _ := NewPostgresStore(PostgresOptions{DB: db})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "pmboard_session", Value: "old"})
	sess, err := store.Get(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !sess.IsNew() || sess.Get("token") != "" {
		t.Fatalf("expected fresh session for expired row")
	}
	if _, ok := db.rows["old"]; ok {
		t.Fatalf("expected expired row removed")
	}
}

func TestPostgresStoreValidation(t *testing.T) {
	if _, err := NewPostgresStore(PostgresOptions{}); err == nil {
		t.Fatalf("expected missing pool error")
	}
	_, err := NewPostgresStore(PostgresOptions{DB: &fakeQuerier{}, Table: "bad;drop"})
	if err == nil {
		t.Fatalf("expected invalid table error")
	}
	if errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("unexpected error kind")
	}
}
