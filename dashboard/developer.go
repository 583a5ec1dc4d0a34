package dashboard

import (
	"net/http"
	"strings"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/flash"
	"github.com/devmarvs/pmboard/listquery"
)

func (s *Server) developerDashboard(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	stats, err := s.backend.TaskStats(ctx.Request.Context(), principal.Token)
	if err != nil {
		return s.fail(ctx, err, msgStatsFailed)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"user":  principal.Public(),
		"stats": stats,
	})
}

// completedTasks pages a developer's own completed tasks. The page size is
// fixed; the backend does the paging.
func (s *Server) completedTasks(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	id, err := ctx.ParamInt("id")
	if err != nil {
		return err
	}
	if id != principal.ID {
		return apperr.Forbidden("Unauthorized Access", nil)
	}
	page, err := ctx.QueryInt("page", 1)
	if err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}

	reqCtx := ctx.Request.Context()
	profile := s.backend.ProfileOrDefault(reqCtx, principal.Token, id)
	view := listquery.NewView(listquery.Fetcher[backend.CompletedTask](s.backend, listquery.Request{
		Resource: listquery.CompletedTasks,
		PageSize: s.cfg.TaskPageSize,
		Token:    principal.Token,
	}))
	return serveList(s, ctx, view, page, always(msgTasksFailed), func(resp *listResponse[backend.CompletedTask]) {
		resp.Profile = &profile
	})
}

func (s *Server) addComment(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	taskID, err := ctx.ParamInt("taskID")
	if err != nil {
		return err
	}
	var comment backend.Comment
	if err := ctx.BindJSON(&comment); err != nil {
		return err
	}
	comment.Comment = strings.TrimSpace(comment.Comment)
	message, err := s.backend.AddComment(ctx.Request.Context(), principal.Token, taskID, comment)
	if err != nil {
		return s.fail(ctx, err, "Failed to add comment.")
	}
	s.notify(ctx, flash.TypeSuccess, message)
	return ctx.JSON(http.StatusCreated, mutationResponse{Message: message})
}

func (s *Server) suggestDevelopers(ctx *pmboard.Context) error {
	items, err := s.lookup.Search(ctx.Request.Context(), ctx.Query("query"))
	if err != nil {
		return s.fail(ctx, err, "Failed to fetch developers.")
	}
	if items == nil {
		items = []backend.Suggestion{}
	}
	return ctx.JSON(http.StatusOK, map[string]any{"items": items})
}
