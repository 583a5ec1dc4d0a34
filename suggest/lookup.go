// Package suggest backs the developer assignee dropdown: a cached name
// lookup and a dropdown whose close-on-blur is an explicit, cancellable
// delayed action.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/listquery"
	"github.com/devmarvs/pmboard/logging"
)

// DefaultCacheSize is used when no cache size is configured.
const DefaultCacheSize = 256

// Lookup searches developers by name and caches answers per query.
type Lookup struct {
	lister listquery.Lister
	cache  *lru.Cache[string, []backend.Suggestion]
	logger *slog.Logger
}

// NewLookup creates a Lookup over lister holding up to size queries.
func NewLookup(lister listquery.Lister, size int, logger *slog.Logger) (*Lookup, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []backend.Suggestion](size)
	if err != nil {
		return nil, fmt.Errorf("suggestion cache: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Lookup{lister: lister, cache: cache, logger: logger}, nil
}

// Search returns developers matching query. A blank query matches nothing
// and makes no request. Failures are not cached.
func (l *Lookup) Search(ctx context.Context, query string) ([]backend.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []backend.Suggestion{}, nil
	}
	key := strings.ToLower(query)
	if cached, ok := l.cache.Get(key); ok {
		return append([]backend.Suggestion(nil), cached...), nil
	}

	page, err := listquery.Fetch[backend.Suggestion](ctx, l.lister, listquery.Request{
		Resource: listquery.DeveloperSuggestions,
		Page:     1,
		PageSize: listquery.MaxPageSize,
		Query:    url.Values{"query": {query}},
	})
	if err != nil {
		l.logger.Debug("developer lookup failed", slog.String("error", err.Error()))
		return nil, err
	}
	l.cache.Add(key, page.Items)
	return append([]backend.Suggestion(nil), page.Items...), nil
}

// Purge drops every cached answer, e.g. after a developer was edited.
func (l *Lookup) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached queries.
func (l *Lookup) Len() int {
	return l.cache.Len()
}
