package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Upstream checks that the backend answers at all. Any status below 500
// counts as up: the root path of the backend is not a health endpoint, so a
// 404 still proves it is serving.
func Upstream(client *http.Client, url string) CheckFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("upstream returned %d", resp.StatusCode)
		}
		return nil
	}
}

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks a database connection.
func Ping(db Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if db == nil {
			return fmt.Errorf("database not configured")
		}
		return db.Ping(ctx)
	}
}
