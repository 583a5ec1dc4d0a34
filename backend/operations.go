package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/validate"
)

// Form messages shown next to the submitting form.
const (
	MsgLoginRequired    = "Email and password are required."
	MsgRegisterRequired = "All fields are required"
	MsgDeveloperFields  = "Name, email and phone are required."
	MsgProjectRequired  = "Please fill in all fields"
	MsgTaskRequired     = "Please fill in all fields."
	MsgCommentRequired  = "Comment cannot be empty."
)

// LoginResult is a successful login.
type LoginResult struct {
	Message   string
	Principal auth.Principal
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	User    struct {
		Role string `json:"role"`
		Name string `json:"name"`
		ID   int64  `json:"id"`
	} `json:"user"`
}

// Login exchanges credentials for a principal. Blank fields are rejected
// before any request is made.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validate.Form(creds, MsgLoginRequired); err != nil {
		return LoginResult{}, err
	}

	const op = "login"
	body, err := c.object(ctx, call{op: op, method: http.MethodPost, path: "/auth/login", body: creds})
	if err != nil {
		return LoginResult{}, err
	}

	var resp loginResponse
	if err := decodeRecord(body, &resp); err != nil {
		return LoginResult{}, c.envelopeError(op, http.StatusOK, "", fmt.Errorf("%w: %v", ErrUnexpectedEnvelope, err))
	}
	if resp.Token == "" {
		return LoginResult{}, c.envelopeError(op, http.StatusOK, resp.Message, fmt.Errorf("%w: no token issued", ErrRejected))
	}

	role, err := auth.ParseRole(resp.User.Role)
	if err != nil {
		return LoginResult{}, c.envelopeError(op, http.StatusOK, resp.Message, fmt.Errorf("%w: %v", ErrRejected, err))
	}
	principal := auth.Principal{Token: resp.Token, Role: role, Name: resp.User.Name, ID: resp.User.ID}
	if err := principal.Validate(); err != nil {
		return LoginResult{}, c.envelopeError(op, http.StatusOK, resp.Message, fmt.Errorf("%w: %v", ErrRejected, err))
	}

	message := resp.Message
	if message == "" {
		message = "Login successful!"
	}
	c.logger.Info("login accepted", slog.String("role", string(role)), slog.Int64("user_id", principal.ID))
	return LoginResult{Message: message, Principal: principal}, nil
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, token string, form Registration) (string, error) {
	if form.Role == "" {
		form.Role = string(auth.RoleDeveloper)
	}
	if err := validate.Form(form, MsgRegisterRequired); err != nil {
		return "", err
	}
	return c.mutate(ctx, call{
		op:     "register user",
		method: http.MethodPost,
		path:   "/auth/register",
		token:  token,
		body:   form,
	}, "User registered successfully!")
}

// UpdateDeveloper edits a developer account.
func (c *Client) UpdateDeveloper(ctx context.Context, token string, id int64, update DeveloperUpdate) (string, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return "", err
	}
	if err := validate.Form(update, MsgDeveloperFields); err != nil {
		return "", err
	}
	return c.mutate(ctx, call{
		op:     "update developer",
		method: http.MethodPut,
		path:   "/api/edit-developer/" + strconv.FormatInt(id, 10),
		token:  token,
		auth:   true,
		body:   update,
	}, "Developer updated successfully!")
}

// DeleteDeveloper removes a developer account.
func (c *Client) DeleteDeveloper(ctx context.Context, token string, id int64) (string, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return "", err
	}
	return c.mutate(ctx, call{
		op:     "delete developer",
		method: http.MethodDelete,
		path:   "/api/delete-developer/" + strconv.FormatInt(id, 10),
		token:  token,
		auth:   true,
	}, "Developer deleted successfully!")
}

// CreateProject adds a project assigned to a developer.
func (c *Client) CreateProject(ctx context.Context, token string, project NewProject) (string, error) {
	if err := validate.Form(project, MsgProjectRequired); err != nil {
		return "", err
	}
	return c.mutate(ctx, call{
		op:     "create project",
		method: http.MethodPost,
		path:   "/api/add-project",
		token:  token,
		auth:   true,
		body:   project,
	}, "Project created successfully!")
}

// CreateTask adds a task to a project.
func (c *Client) CreateTask(ctx context.Context, token string, task NewTask) (string, error) {
	if err := validate.Form(task, MsgTaskRequired); err != nil {
		return "", err
	}
	return c.mutate(ctx, call{
		op:     "create task",
		method: http.MethodPost,
		path:   "/api/create-task",
		token:  token,
		auth:   true,
		body:   task,
	}, "Task created successfully!")
}

// AddComment attaches a comment to a task.
func (c *Client) AddComment(ctx context.Context, token string, taskID int64, comment Comment) (string, error) {
	if err := validate.PositiveID("task_id", taskID); err != nil {
		return "", err
	}
	if err := validate.Form(comment, MsgCommentRequired); err != nil {
		return "", err
	}
	return c.mutate(ctx, call{
		op:     "add comment",
		method: http.MethodPost,
		path:   "/api/add-comment/" + strconv.FormatInt(taskID, 10),
		token:  token,
		auth:   true,
		body:   comment,
	}, "Comment added successfully")
}

// AdminStats loads the admin counters.
func (c *Client) AdminStats(ctx context.Context, token string) (AdminStats, error) {
	body, err := c.object(ctx, call{op: "admin stats", method: http.MethodGet, path: "/admin/stats", token: token, auth: true})
	if err != nil {
		return AdminStats{}, err
	}
	return AdminStats{
		TotalProjects:   intOrZero(body["totalProjects"]),
		TotalDevelopers: intOrZero(body["totalDevelopers"]),
		TotalTasks:      intOrZero(body["totalTasks"]),
	}, nil
}

// TaskStats loads the developer counters. Counters may arrive as numeric
// strings; unreadable values count as zero.
func (c *Client) TaskStats(ctx context.Context, token string) (TaskStats, error) {
	body, err := c.object(ctx, call{op: "task stats", method: http.MethodGet, path: "/api/tasks-stats", token: token, auth: true})
	if err != nil {
		return TaskStats{}, err
	}
	data, _ := body["data"].(map[string]any)
	return TaskStats{
		Completed:  intOrZero(data["totalCompleted"]),
		InProgress: intOrZero(data["totalInProgress"]),
		Todo:       intOrZero(data["totalTodo"]),
	}, nil
}

// DeveloperProfile loads the profile card of a developer.
func (c *Client) DeveloperProfile(ctx context.Context, token string, id int64) (Profile, error) {
	if err := validate.PositiveID("id", id); err != nil {
		return Profile{}, err
	}
	const op = "developer profile"
	body, err := c.object(ctx, call{op: op, method: http.MethodGet, path: "/api/developer/" + strconv.FormatInt(id, 10), token: token, auth: true})
	if err != nil {
		return Profile{}, err
	}
	profile := Profile{ID: id}
	if data, ok := body["data"].(map[string]any); ok {
		if err := decodeRecord(data, &profile); err != nil {
			return Profile{}, c.envelopeError(op, http.StatusOK, "", fmt.Errorf("%w: %v", ErrUnexpectedEnvelope, err))
		}
	}
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = DefaultProfileName
	}
	return profile, nil
}

// ProfileOrDefault loads a profile and falls back to the placeholder card
// when the backend cannot provide one.
func (c *Client) ProfileOrDefault(ctx context.Context, token string, id int64) Profile {
	profile, err := c.DeveloperProfile(ctx, token, id)
	if err != nil {
		c.logger.Warn("developer profile unavailable", slog.Int64("developer_id", id), slog.String("error", err.Error()))
		return Profile{ID: id, Name: DefaultProfileName}
	}
	return profile
}

// Total reads one of the /api/total-* counters. The count may be sent bare
// or under total, count or data.
func (c *Client) Total(ctx context.Context, token string, kind TotalKind) (int, error) {
	if !kind.Valid() {
		return 0, apperr.Validation("unknown counter "+string(kind), nil)
	}
	op := "total " + string(kind)
	resp, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/api/total-" + string(kind), token: token, auth: true})
	if err != nil {
		return 0, err
	}
	value, err := decodeBody(resp.body)
	if err != nil {
		return 0, c.envelopeError(op, resp.status, "", err)
	}
	if n, ok := intValue(value); ok {
		return n, nil
	}
	body, ok := value.(map[string]any)
	if !ok {
		return 0, c.envelopeError(op, resp.status, "", ErrUnexpectedEnvelope)
	}
	if success, ok := body["success"].(bool); ok && !success {
		return 0, c.envelopeError(op, resp.status, stringField(body, "message"), ErrRejected)
	}
	for _, key := range []string{"total", "count", "data"} {
		if n, ok := intValue(body[key]); ok {
			return n, nil
		}
		if nested, ok := body[key].(map[string]any); ok {
			for _, inner := range []string{"total", "count"} {
				if n, ok := intValue(nested[inner]); ok {
					return n, nil
				}
			}
		}
	}
	return 0, c.envelopeError(op, resp.status, "", ErrUnexpectedEnvelope)
}
