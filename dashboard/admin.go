package dashboard

import (
	"net/http"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/flash"
	"github.com/devmarvs/pmboard/listquery"
)

const (
	msgStatsFailed      = "Failed to load dashboard stats."
	msgDevelopersFailed = "Failed to load developers."
	msgProjectsFailed   = "Failed to load projects."
	msgFetchFailed      = "Something went wrong while fetching data."
)

type mutationResponse struct {
	Message   string             `json:"message"`
	Developer *backend.Developer `json:"developer,omitempty"`
	ID        int64              `json:"id,omitempty"`
}

func (s *Server) adminDashboard(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	stats, err := s.backend.AdminStats(ctx.Request.Context(), principal.Token)
	if err != nil {
		return s.fail(ctx, err, msgStatsFailed)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"user":  principal.Public(),
		"stats": stats,
	})
}

func (s *Server) adminTotals(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	totals := make(map[backend.TotalKind]int, 3)
	for _, kind := range []backend.TotalKind{backend.TotalProjects, backend.TotalDevelopers, backend.TotalManagers} {
		n, err := s.backend.Total(ctx.Request.Context(), principal.Token, kind)
		if err != nil {
			return s.fail(ctx, err, msgStatsFailed)
		}
		totals[kind] = n
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (s *Server) registerUser(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	var form backend.Registration
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	message, err := s.backend.Register(ctx.Request.Context(), principal.Token, form)
	if err != nil {
		return s.fail(ctx, err, "Registration failed.")
	}
	// A new developer must show up in the assignee dropdown.
	s.lookup.Purge()
	s.notify(ctx, flash.TypeSuccess, message)
	return ctx.JSON(http.StatusCreated, mutationResponse{Message: message})
}

func (s *Server) listDevelopers(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	paging, err := pagination(ctx, s.cfg.PageSize)
	if err != nil {
		return err
	}
	view := listquery.NewView(listquery.Fetcher[backend.Developer](s.backend, listquery.Request{
		Resource: listquery.Developers,
		PageSize: paging.Size,
		Token:    principal.Token,
	}))
	return serveList(s, ctx, view, paging.Page, always(msgDevelopersFailed), nil)
}

func (s *Server) updateDeveloper(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	id, err := ctx.ParamInt("id")
	if err != nil {
		return err
	}
	var update backend.DeveloperUpdate
	if err := ctx.BindJSON(&update); err != nil {
		return err
	}
	message, err := s.backend.UpdateDeveloper(ctx.Request.Context(), principal.Token, id, update)
	if err != nil {
		return s.fail(ctx, err, "Failed to update developer.")
	}
	s.lookup.Purge()
	s.notify(ctx, flash.TypeSuccess, message)
	row := backend.Developer{ID: id}.Apply(update)
	return ctx.JSON(http.StatusOK, mutationResponse{Message: message, Developer: &row})
}

func (s *Server) deleteDeveloper(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	id, err := ctx.ParamInt("id")
	if err != nil {
		return err
	}
	message, err := s.backend.DeleteDeveloper(ctx.Request.Context(), principal.Token, id)
	if err != nil {
		return s.fail(ctx, err, "Failed to delete developer.")
	}
	s.lookup.Purge()
	s.notify(ctx, flash.TypeSuccess, message)
	return ctx.JSON(http.StatusOK, mutationResponse{Message: message, ID: id})
}

func (s *Server) adminProjects(ctx *pmboard.Context) error {
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
	view := listquery.NewFilteredView(listquery.Fetcher[backend.AdminProject](s.backend, listquery.Request{
		Resource: listquery.AdminProjects,
		PageSize: paging.Size,
		Token:    principal.Token,
	}))
	view.SetFilter(filter)
	return serveList(s, ctx, view, paging.Page, byKind(msgProjectsFailed, msgFetchFailed), func(resp *listResponse[backend.AdminProject]) {
		resp.Projects = view.ProjectNames()
	})
}

// filterOf reads the status and project query parameters.
func filterOf(ctx *pmboard.Context) (listquery.FilterState, error) {
	filter, err := listquery.ParseFilter(ctx.Query("status"), ctx.Query("project"))
	if err != nil {
		return filter, apperr.BadRequest(err.Error(), err)
	}
	return filter, nil
}
