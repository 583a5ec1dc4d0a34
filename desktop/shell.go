package desktop

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/listquery"
	"github.com/devmarvs/pmboard/logging"
	"github.com/devmarvs/pmboard/session"
	"github.com/devmarvs/pmboard/suggest"
)

// Screen names a desktop view.
type Screen string

const (
	ScreenLogin        Screen = "login"
	ScreenAdmin        Screen = "admin"
	ScreenManager      Screen = "manager"
	ScreenDeveloper    Screen = "developer"
	ScreenUnauthorized Screen = "unauthorized"
)

// screenRoles are the static allowed roles of each protected screen.
var screenRoles = map[Screen]auth.RoleSet{
	ScreenAdmin:     auth.Roles(auth.RoleAdmin),
	ScreenManager:   auth.Roles(auth.RoleManager),
	ScreenDeveloper: auth.Roles(auth.RoleDeveloper),
}

// HomeScreen is the landing screen of a role.
func HomeScreen(role auth.Role) Screen {
	switch role {
	case auth.RoleAdmin:
		return ScreenAdmin
	case auth.RoleManager:
		return ScreenManager
	case auth.RoleDeveloper:
		return ScreenDeveloper
	default:
		return ScreenLogin
	}
}

// SessionFile persists the desktop session between runs.
type SessionFile interface {
	Load() (*session.Session, error)
	Write(*session.Session) error
	Remove() error
}

// Shell is the desktop controller. It owns the session and hands the
// widgets list views and dropdowns bound to the backend.
type Shell struct {
	client       *backend.Client
	file         SessionFile
	lookup       *suggest.Lookup
	pageSize     int
	taskPageSize int
	logger       *slog.Logger

	mu   sync.Mutex
	sess *session.Session
}

// ShellOptions configures a Shell.
type ShellOptions struct {
	Client       *backend.Client
	Sessions     SessionFile
	PageSize     int
	TaskPageSize int
	Logger       *slog.Logger
}

// NewShell loads the stored session. A stored partial principal counts as
// logged out.
func NewShell(options ShellOptions) (*Shell, error) {
	if options.Client == nil {
		return nil, errors.New("desktop: backend client is required")
	}
	if options.Sessions == nil {
		return nil, errors.New("desktop: session file is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	sess, err := options.Sessions.Load()
	if err != nil {
		logger.Warn("stored session unreadable", slog.String("error", err.Error()))
		sess = session.New()
	}
	lookup, err := suggest.NewLookup(options.Client, 0, logger)
	if err != nil {
		return nil, err
	}
	shell := &Shell{
		client:       options.Client,
		file:         options.Sessions,
		lookup:       lookup,
		pageSize:     options.PageSize,
		taskPageSize: options.TaskPageSize,
		logger:       logger,
		sess:         sess,
	}
	if shell.pageSize <= 0 {
		shell.pageSize = listquery.DefaultPageSize
	}
	if shell.taskPageSize <= 0 {
		shell.taskPageSize = listquery.TaskPageSize
	}
	return shell, nil
}

// Principal returns the logged-in principal.
func (s *Shell) Principal() (*auth.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Principal()
}

// Resolve runs the access gate for screen and returns the screen to show
// instead when access is denied.
func (s *Shell) Resolve(screen Screen) Screen {
	roles, protected := screenRoles[screen]
	if !protected {
		return screen
	}
	principal, _ := s.Principal()
	switch auth.Decide(principal, roles) {
	case auth.Allow:
		return screen
	case auth.RedirectUnauthorized:
		return ScreenUnauthorized
	default:
		return ScreenLogin
	}
}

// Start returns the first screen: home when logged in, else login.
func (s *Shell) Start() Screen {
	if principal, ok := s.Principal(); ok {
		return HomeScreen(principal.Role)
	}
	return ScreenLogin
}

// Login stores the principal and returns the role's home screen.
func (s *Shell) Login(ctx context.Context, creds backend.Credentials) (Screen, string, error) {
	result, err := s.client.Login(ctx, creds)
	if err != nil {
		return ScreenLogin, "", err
	}
	s.mu.Lock()
	s.sess.ClearPrincipal()
	err = s.sess.SetPrincipal(result.Principal)
	if err == nil {
		err = s.file.Write(s.sess)
	}
	s.mu.Unlock()
	if err != nil {
		return ScreenLogin, "", err
	}
	return HomeScreen(result.Principal.Role), result.Message, nil
}

// Logout forgets the principal.
func (s *Shell) Logout() error {
	s.mu.Lock()
	s.sess.ClearPrincipal()
	s.mu.Unlock()
	return s.file.Remove()
}

func (s *Shell) token() string {
	if principal, ok := s.Principal(); ok {
		return principal.Token
	}
	return ""
}

// Developers returns the admin developer table view.
func (s *Shell) Developers() *listquery.View[backend.Developer] {
	return listquery.NewView(listquery.Fetcher[backend.Developer](s.client, listquery.Request{
		Resource: listquery.Developers,
		PageSize: s.pageSize,
		Token:    s.token(),
	}))
}

// ManagerTasks returns the filterable manager task view.
func (s *Shell) ManagerTasks() *listquery.View[backend.ManagerTask] {
	return listquery.NewFilteredView(listquery.Fetcher[backend.ManagerTask](s.client, listquery.Request{
		Resource: listquery.ManagerTasks,
		PageSize: s.pageSize,
		Token:    s.token(),
	}))
}

// CompletedTasks returns the developer's completed task view.
func (s *Shell) CompletedTasks() *listquery.View[backend.CompletedTask] {
	return listquery.NewView(listquery.Fetcher[backend.CompletedTask](s.client, listquery.Request{
		Resource: listquery.CompletedTasks,
		PageSize: s.taskPageSize,
		Token:    s.token(),
	}))
}

// AssigneeDropdown returns a developer dropdown for a task or project form.
func (s *Shell) AssigneeDropdown() *suggest.Dropdown {
	return suggest.NewDropdown(s.lookup, suggest.BlurGrace)
}

// AdminStats loads the admin counters.
func (s *Shell) AdminStats(ctx context.Context) (backend.AdminStats, error) {
	return s.client.AdminStats(ctx, s.token())
}

// TaskStats loads the developer counters.
func (s *Shell) TaskStats(ctx context.Context) (backend.TaskStats, error) {
	return s.client.TaskStats(ctx, s.token())
}

// Profile loads the developer header card.
func (s *Shell) Profile(ctx context.Context) backend.Profile {
	principal, ok := s.Principal()
	if !ok {
		return backend.Profile{Name: backend.DefaultProfileName}
	}
	return s.client.ProfileOrDefault(ctx, principal.Token, principal.ID)
}

// CreateTask submits the manager task form.
func (s *Shell) CreateTask(ctx context.Context, task backend.NewTask) (string, error) {
	return s.client.CreateTask(ctx, s.token(), task)
}

// AddComment submits a developer comment.
func (s *Shell) AddComment(ctx context.Context, taskID int64, comment backend.Comment) (string, error) {
	return s.client.AddComment(ctx, s.token(), taskID, comment)
}

// DeleteDeveloper removes a developer and drops cached suggestions.
func (s *Shell) DeleteDeveloper(ctx context.Context, id int64) (string, error) {
	message, err := s.client.DeleteDeveloper(ctx, s.token(), id)
	if err == nil {
		s.lookup.Purge()
	}
	return message, err
}
