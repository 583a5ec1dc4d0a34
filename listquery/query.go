// Package listquery fetches pages of developers, projects and tasks from the
// upstream backend, whatever envelope each endpoint wraps them in, and
// filters fetched pages on the client.
package listquery

import (
	"context"
	"net/url"
	"strconv"

	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/validate"
)

// Resource describes one list endpoint.
type Resource struct {
	Name string
	Path string
	// Auth endpoints are never called without a token.
	Auth bool
	// ServerPaged endpoints take page and limit and report totalPages.
	// Other endpoints return the whole set, which is paged locally.
	ServerPaged bool
}

// Known list endpoints.
var (
	Developers           = Resource{Name: "developers", Path: "/api/getDeveloper-data", Auth: true}
	ManagerProjects      = Resource{Name: "manager projects", Path: "/api/get-all-projects", Auth: true}
	AdminProjects        = Resource{Name: "admin projects", Path: "/admin/getAll-projects-data", Auth: true}
	ManagerTasks         = Resource{Name: "manager tasks", Path: "/api/view-tasks", Auth: true}
	CompletedTasks       = Resource{Name: "completed tasks", Path: "/api/get-completed-tasks", Auth: true, ServerPaged: true}
	DeveloperSuggestions = Resource{Name: "developer suggestions", Path: "/api/get-developers"}
)

// Lister performs one list call. *backend.Client implements it.
type Lister interface {
	List(ctx context.Context, req backend.ListRequest) (backend.Envelope, error)
}

// Request asks for one page of a resource.
type Request struct {
	Resource Resource
	Page     int
	PageSize int
	Token    string
	// Query carries extra parameters, e.g. the suggestion search term.
	Query url.Values
}

// Page is one page of records. Page never exceeds TotalPages and Items
// never exceeds PageSize. For locally paged resources All holds the whole
// fetched set, so filters see every record and not just this page.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	PageSize   int `json:"page_size"`
	All        []T `json:"-"`
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// Fetch retrieves one page. Items keep the order the backend sent them in.
// Failed calls are never retried. A server paged request past the last
// page is re-issued once for the last page; a locally paged one is clamped.
func Fetch[T any](ctx context.Context, lister Lister, req Request) (Page[T], error) {
	if err := req.validate(); err != nil {
		return Page[T]{}, err
	}
	if req.Resource.Auth && req.Token == "" {
		return Page[T]{}, &backend.FetchError{Kind: backend.KindTransport, Op: req.Resource.Name, Err: backend.ErrMissingToken}
	}

	env, err := list(ctx, lister, req)
	if err != nil {
		return Page[T]{}, err
	}
	if req.Resource.ServerPaged && env.TotalPages >= 1 && req.Page > env.TotalPages {
		req.Page = env.TotalPages
		if env, err = list(ctx, lister, req); err != nil {
			return Page[T]{}, err
		}
	}

	records, err := backend.DecodeRecords[T](env.Items)
	if err != nil {
		return Page[T]{}, &backend.FetchError{Kind: backend.KindTransport, Op: req.Resource.Name, Err: err}
	}

	if req.Resource.ServerPaged {
		return serverPage(records, env.TotalPages, req), nil
	}
	return localPage(records, req), nil
}

func list(ctx context.Context, lister Lister, req Request) (backend.Envelope, error) {
	query := url.Values{}
	for key, values := range req.Query {
		query[key] = append([]string(nil), values...)
	}
	if req.Resource.ServerPaged {
		query.Set("page", strconv.Itoa(req.Page))
		query.Set("limit", strconv.Itoa(req.PageSize))
	}
	return lister.List(ctx, backend.ListRequest{
		Op:    req.Resource.Name,
		Path:  req.Resource.Path,
		Query: query,
		Token: req.Token,
		Auth:  req.Resource.Auth,
	})
}

// serverPage labels records with the page that was asked for. A backend
// that omits totalPages is taken to have at least that many pages.
func serverPage[T any](records []T, totalPages int, req Request) Page[T] {
	switch {
	case totalPages < 1:
		totalPages = req.Page
	case totalPages < req.Page:
		// The set shrank between the two calls; the page asked for is empty.
		records = nil
		totalPages = req.Page
	}
	if len(records) > req.PageSize {
		records = records[:req.PageSize]
	}
	return Page[T]{
		Items:      append(make([]T, 0, len(records)), records...),
		Page:       req.Page,
		TotalPages: totalPages,
		PageSize:   req.PageSize,
	}
}

func localPage[T any](records []T, req Request) Page[T] {
	totalPages := TotalPages(len(records), req.PageSize)
	page := min(req.Page, totalPages)
	return Page[T]{
		Items:      window(records, page, req.PageSize),
		Page:       page,
		TotalPages: totalPages,
		PageSize:   req.PageSize,
		All:        append(make([]T, 0, len(records)), records...),
	}
}

// window copies the records of one page out of a full set.
func window[T any](records []T, page, size int) []T {
	start := Pagination{Page: page, Size: size, MaxSize: size}.Offset()
	if start >= len(records) {
		return []T{}
	}
	end := min(start+size, len(records))
	return append(make([]T, 0, end-start), records[start:end]...)
}

func (r Request) validate() error {
	var fields []validate.FieldError
	if r.Page < 1 {
		fields = append(fields, validate.FieldError{Field: "page", Message: "page must be at least 1"})
	}
	if r.PageSize < 1 {
		fields = append(fields, validate.FieldError{Field: "page_size", Message: "page_size must be at least 1"})
	}
	if r.Resource.Path == "" {
		fields = append(fields, validate.FieldError{Field: "resource", Message: "resource is required"})
	}
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation("invalid list request", &validate.Errors{Fields: fields})
}

// Fetcher binds a request template to a FetchFunc for a View.
func Fetcher[T any](lister Lister, req Request) FetchFunc[T] {
	return func(ctx context.Context, page int) (Page[T], error) {
		req := req
		req.Page = page
		return Fetch[T](ctx, lister, req)
	}
}
