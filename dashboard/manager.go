package dashboard

import (
	"net/http"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/flash"
	"github.com/devmarvs/pmboard/listquery"
)

const msgTasksFailed = "Failed to load tasks."

func (s *Server) managerDashboard(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	paging, err := pagination(ctx, s.cfg.PageSize)
	if err != nil {
		return err
	}
	filter, err := filterOf(ctx)
	if err != nil {
		return err
	}
	view := listquery.NewFilteredView(listquery.Fetcher[backend.ManagerProject](s.backend, listquery.Request{
		Resource: listquery.ManagerProjects,
		PageSize: paging.Size,
		Token:    principal.Token,
	}))
	view.SetFilter(filter)
	return serveList(s, ctx, view, paging.Page, byKind(msgProjectsFailed, msgFetchFailed), func(resp *listResponse[backend.ManagerProject]) {
		resp.Projects = view.ProjectNames()
	})
}

func (s *Server) managerTasks(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	paging, err := pagination(ctx, s.cfg.PageSize)
	if err != nil {
		return err
	}
	filter, err := filterOf(ctx)
	if err != nil {
		return err
	}
	view := listquery.NewFilteredView(listquery.Fetcher[backend.ManagerTask](s.backend, listquery.Request{
		Resource: listquery.ManagerTasks,
		PageSize: paging.Size,
		Token:    principal.Token,
	}))
	view.SetFilter(filter)
	return serveList(s, ctx, view, paging.Page, always(msgTasksFailed), func(resp *listResponse[backend.ManagerTask]) {
		resp.Projects = view.ProjectNames()
	})
}

func (s *Server) createProject(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	var project backend.NewProject
	if err := ctx.BindJSON(&project); err != nil {
		return err
	}
	message, err := s.backend.CreateProject(ctx.Request.Context(), principal.Token, project)
	if err != nil {
		return s.fail(ctx, err, "Failed to create project.")
	}
	s.notify(ctx, flash.TypeSuccess, message)
	return ctx.JSON(http.StatusCreated, mutationResponse{Message: message})
}

func (s *Server) createTask(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	var task backend.NewTask
	if err := ctx.BindJSON(&task); err != nil {
		return err
	}
	message, err := s.backend.CreateTask(ctx.Request.Context(), principal.Token, task)
	if err != nil {
		return s.fail(ctx, err, "Failed to create task.")
	}
	s.notify(ctx, flash.TypeSuccess, message)
	return ctx.JSON(http.StatusCreated, mutationResponse{Message: message})
}
