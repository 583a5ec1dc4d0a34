package dashboard

import (
	"net/http"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/auth"
)

// Route is one gateway endpoint. A route with Roles is gated before its
// handler runs; a route without Roles is public.
type Route struct {
	Method string
	Path   string
	Roles  auth.RoleSet

	handler pmboard.Handler
}

var (
	adminOnly     = auth.Roles(auth.RoleAdmin)
	managerOnly   = auth.Roles(auth.RoleManager)
	developerOnly = auth.Roles(auth.RoleDeveloper)
	assigners     = auth.Roles(auth.RoleAdmin, auth.RoleManager)
	anyone        = auth.Roles(auth.RoleAdmin, auth.RoleManager, auth.RoleDeveloper)
)

// Routes returns the static route table.
func (s *Server) Routes() []Route {
	return s.routes()
}

func (s *Server) routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/healthz", handler: s.healthz},
		{Method: http.MethodGet, Path: "/readyz", handler: s.readyz},

		{Method: http.MethodGet, Path: "/", handler: s.landing},
		{Method: http.MethodPost, Path: "/auth/login", handler: s.login},
		{Method: http.MethodPost, Path: "/auth/logout", handler: s.logout},
		{Method: http.MethodGet, Path: "/auth/session", handler: s.currentSession},
		{Method: http.MethodGet, Path: "/notifications", handler: s.notifications},
		{Method: http.MethodGet, Path: auth.UnauthorizedPath, handler: s.unauthorized},

		{Method: http.MethodGet, Path: "/admin", Roles: adminOnly, handler: s.adminDashboard},
		{Method: http.MethodPost, Path: "/admin/users", Roles: adminOnly, handler: s.registerUser},
		{Method: http.MethodGet, Path: "/admin/developers", Roles: adminOnly, handler: s.listDevelopers},
		{Method: http.MethodPut, Path: "/admin/developers/{id}", Roles: adminOnly, handler: s.updateDeveloper},
		{Method: http.MethodDelete, Path: "/admin/developers/{id}", Roles: adminOnly, handler: s.deleteDeveloper},
		{Method: http.MethodGet, Path: "/admin/projects", Roles: adminOnly, handler: s.adminProjects},
		{Method: http.MethodGet, Path: "/admin/totals", Roles: adminOnly, handler: s.adminTotals},

		{Method: http.MethodGet, Path: "/manager", Roles: managerOnly, handler: s.managerDashboard},
		{Method: http.MethodPost, Path: "/manager/projects", Roles: managerOnly, handler: s.createProject},
		{Method: http.MethodGet, Path: "/manager/tasks", Roles: managerOnly, handler: s.managerTasks},
		{Method: http.MethodPost, Path: "/manager/tasks", Roles: managerOnly, handler: s.createTask},

		{Method: http.MethodGet, Path: "/developer", Roles: developerOnly, handler: s.developerDashboard},
		{Method: http.MethodGet, Path: "/developer/{id}/completed-tasks", Roles: developerOnly, handler: s.completedTasks},
		{Method: http.MethodPost, Path: "/developer/tasks/{taskID}/comments", Roles: developerOnly, handler: s.addComment},

		{Method: http.MethodGet, Path: "/suggestions/developers", Roles: assigners, handler: s.suggestDevelopers},
		{Method: http.MethodGet, Path: "/me", Roles: anyone, handler: s.me},
	}
}
