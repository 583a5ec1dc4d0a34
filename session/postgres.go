package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultPostgresTable = "pmboard_sessions"

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// PostgresOptions configures a Postgres store.
type PostgresOptions struct {
	DB      Querier
	Name    string
	Table   string
	TTL     time.Duration
	Timeout time.Duration
	Secure  bool
}

// PostgresStore stores sessions in PostgreSQL using a session ID cookie.
type PostgresStore struct {
	CookieOptions
	DB      Querier
	Table   string
	TTL     time.Duration
	Timeout time.Duration
	now     func() time.Time
}

// NewPostgresStore builds a Postgres-backed store.
func NewPostgresStore(options PostgresOptions) (*PostgresStore, error) {
	if options.DB == nil {
		return nil, errors.New("postgres pool is required")
	}
	table := strings.TrimSpace(options.Table)
	if table == "" {
		table = DefaultPostgresTable
	}
	if !validPostgresTable(table) {
		return nil, fmt.Errorf("invalid postgres table name: %s", table)
	}

	cookie := DefaultCookieOptions(strings.TrimSpace(options.Name))
	cookie.Secure = options.Secure
	cookie.MaxAge = options.TTL
	return &PostgresStore{
		CookieOptions: cookie,
		DB:            options.DB,
		Table:         table,
		TTL:           options.TTL,
		Timeout:       options.Timeout,
		now:           time.Now,
	}, nil
}

// OpenPool connects a pgx pool and verifies it with a ping.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureTable creates the session table if it does not exist.
func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		data JSONB NOT NULL,
		expires_at TIMESTAMPTZ
	)`, s.Table)
	if _, err := s.DB.Exec(ctx, createTable); err != nil {
		return err
	}
	createIndex := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_expires_idx ON %s (expires_at)", indexPrefix(s.Table), s.Table)
	_, err := s.DB.Exec(ctx, createIndex)
	return err
}

// Cleanup removes expired sessions.
func (s *PostgresStore) Cleanup(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at < $1", s.Table)
	tag, err := s.DB.Exec(ctx, query, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Get loads a session from the request.
func (s *PostgresStore) Get(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.Name)
	if err != nil || cookie.Value == "" {
		return s.fresh()
	}

	ctx, cancel := s.ctx(r.Context())
	defer cancel()

	var payload []byte
	var expires *time.Time
	query := fmt.Sprintf("SELECT data, expires_at FROM %s WHERE id = $1", s.Table)
	err = s.DB.QueryRow(ctx, query, cookie.Value).Scan(&payload, &expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.fresh()
	}
	if err != nil {
		return nil, err
	}

	if expires != nil && s.now().After(*expires) {
		_ = s.deleteByID(ctx, cookie.Value)
		return s.fresh()
	}

	values := map[string]string{}
	if err := json.Unmarshal(payload, &values); err != nil {
		return nil, err
	}
	return &Session{ID: cookie.Value, Values: values, store: s}, nil
}

// Save persists a session.
func (s *PostgresStore) Save(w http.ResponseWriter, session *Session) error {
	if session == nil {
		return errors.New("session missing")
	}
	id := session.ID
	if id == "" {
		newID, err := newSessionID()
		if err != nil {
			return err
		}
		id = newID
	}

	payload, err := json.Marshal(session.Snapshot())
	if err != nil {
		return err
	}

	now := s.now()
	var expires *time.Time
	if s.TTL > 0 {
		at := now.Add(s.TTL)
		expires = &at
	}

	ctx, cancel := s.ctx(context.Background())
	defer cancel()

	query := fmt.Sprintf(`INSERT INTO %s (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`, s.Table)
	if _, err := s.DB.Exec(ctx, query, id, string(payload), expires); err != nil {
		return err
	}

	s.set(w, id, now)
	session.markSaved(id)
	return nil
}

// Clear removes a session.
func (s *PostgresStore) Clear(w http.ResponseWriter, session *Session) {
	if session != nil && session.ID != "" {
		ctx, cancel := s.ctx(context.Background())
		defer cancel()
		_ = s.deleteByID(ctx, session.ID)
	}

	s.clear(w)
	if session != nil {
		session.reset()
	}
}

func (s *PostgresStore) fresh() (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Values: map[string]string{}, store: s, isNew: true}, nil
}

func (s *PostgresStore) deleteByID(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.Table)
	_, err := s.DB.Exec(ctx, query, id)
	return err
}

func (s *PostgresStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.Timeout)
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)?$`)

func validPostgresTable(name string) bool {
	return tableNamePattern.MatchString(name)
}

func indexPrefix(table string) string {
	return strings.ReplaceAll(table, ".", "_")
}
