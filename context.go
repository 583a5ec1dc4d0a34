package pmboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/render"
	"github.com/devmarvs/pmboard/validate"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// Context holds request-specific data.
type Context struct {
	ResponseWriter http.ResponseWriter
	Request        *http.Request

	app    *App
	values map[string]any
}

// NewContext constructs a Context.
func NewContext(w http.ResponseWriter, r *http.Request, app *App) *Context {
	return &Context{
		ResponseWriter: w,
		Request:        r,
		app:            app,
		values:         make(map[string]any),
	}
}

// Param returns a route param.
func (c *Context) Param(name string) string {
	return chi.URLParam(c.Request, name)
}

// ParamInt returns a positive integer route param.
func (c *Context) ParamInt(name string) (int64, error) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperr.BadRequest(name+" must be an integer", err)
	}
	if err := validate.PositiveID(name, value); err != nil {
		return 0, err
	}
	return value, nil
}

// Query returns a query param.
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// QueryInt returns an integer query param or fallback when absent.
func (c *Context) QueryInt(name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest(name+" must be an integer", err)
	}
	return value, nil
}

// Set stores a value in the context.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get retrieves a stored value.
func (c *Context) Get(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() Logger {
	return Logger{logger: c.app.logger, requestID: c.RequestID()}
}

// App returns the owning app.
func (c *Context) App() *App {
	return c.app
}

// JSON responds with JSON.
func (c *Context) JSON(status int, payload any) error {
	return render.JSON(c.ResponseWriter, status, payload)
}

// Text responds with plain text.
func (c *Context) Text(status int, message string) error {
	return render.Text(c.ResponseWriter, status, message)
}

// Redirect responds with a 302 to location.
func (c *Context) Redirect(location string) error {
	return render.Redirect(c.ResponseWriter, c.Request, location)
}

// NoContent responds with 204.
func (c *Context) NoContent() error {
	c.ResponseWriter.WriteHeader(http.StatusNoContent)
	return nil
}

// BindJSON binds the request body to a struct.
func (c *Context) BindJSON(dst any) error {
	body := http.MaxBytesReader(c.ResponseWriter, c.Request.Body, MaxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.PayloadTooLarge("request body too large", err)
		}
		return apperr.BadRequest("invalid JSON", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperr.BadRequest("unexpected JSON payload", err)
	}
	return nil
}

// RequestID returns the request id.
func (c *Context) RequestID() string {
	return RequestMetadataFromRequest(c.Request).RequestID
}

func fieldErrors(err error) []validate.FieldError {
	verr, ok := validate.As(err)
	if !ok {
		return nil
	}
	return verr.Fields
}
