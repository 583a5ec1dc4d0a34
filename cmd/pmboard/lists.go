package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/listquery"
	"github.com/devmarvs/pmboard/suggest"
)

type listFlags struct {
	page     int
	pageSize int
	status   string
	project  string
}

func (f *listFlags) bind(cmd *cobra.Command, filters bool) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (default from config)")
	if filters {
		cmd.Flags().StringVar(&f.status, "status", listquery.StatusAll, "status filter: all|to-do|in-progress|done")
		cmd.Flags().StringVar(&f.project, "project", listquery.ProjectAll, "project name filter")
	}
}

func (f *listFlags) size(fallback int) int {
	if f.pageSize > 0 {
		return f.pageSize
	}
	return fallback
}

// renderList loads one page through a view and prints it. A failed load
// prints the failure and returns it.
func renderList[T any](ctx context.Context, view *listquery.View[T], page int, failure string, header []string, row func(T) []string) error {
	defer view.Close()
	if err := view.Load(ctx, page); err != nil {
		return errors.New(errorText(err, failure))
	}
	snap := view.Snapshot()
	if len(snap.Items) == 0 {
		pterm.Info.Println("Nothing to show.")
	} else {
		data := pterm.TableData{header}
		for _, item := range snap.Items {
			data = append(data, row(item))
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
	}
	footer := "Page " + strconv.Itoa(snap.Page) + " of " + strconv.Itoa(snap.TotalPages)
	if snap.FilteredCount != snap.FetchedCount {
		footer += " (" + strconv.Itoa(snap.FilteredCount) + " of " + strconv.Itoa(snap.FetchedCount) + " rows match the filter)"
	}
	pterm.Info.Println(footer)
	return nil
}

// NewTasksCommand creates the tasks command. Managers see every task with
// filters; developers see their completed tasks.
func NewTasksCommand(opts *RootOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks for the logged-in role",
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := opts.principal(auth.RoleManager, auth.RoleDeveloper)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}

			if principal.Role == auth.RoleDeveloper {
				pterm.DefaultSection.Println(client.ProfileOrDefault(cmd.Context(), principal.Token, principal.ID).Name)
				view := listquery.NewView(listquery.Fetcher[backend.CompletedTask](client, listquery.Request{
					Resource: listquery.CompletedTasks,
					PageSize: opts.cfg.TaskPageSize,
					Token:    principal.Token,
				}))
				return renderList(cmd.Context(), view, flags.page, "Failed to load tasks.",
					[]string{"ID", "TITLE", "PROJECT", "ASSIGNED BY", "COMMENT"},
					func(t backend.CompletedTask) []string {
						return []string{strconv.FormatInt(t.ID, 10), t.Title, t.ProjectName, t.AssignedBy, t.Comment}
					})
			}

			filter, err := listquery.ParseFilter(flags.status, flags.project)
			if err != nil {
				return err
			}
			view := listquery.NewFilteredView(listquery.Fetcher[backend.ManagerTask](client, listquery.Request{
				Resource: listquery.ManagerTasks,
				PageSize: flags.size(opts.cfg.PageSize),
				Token:    principal.Token,
			}))
			view.SetFilter(filter)
			return renderList(cmd.Context(), view, flags.page, "Failed to load tasks.",
				[]string{"ID", "TASK", "PROJECT", "DEVELOPER", "STATUS", "DUE"},
				func(t backend.ManagerTask) []string {
					return []string{strconv.FormatInt(t.ID, 10), t.Name, t.ProjectName, t.DeveloperName, t.Status, t.CompletionDate}
				})
		},
	}
	flags.bind(cmd, true)
	return cmd
}

// NewDevelopersCommand creates the developers command.
func NewDevelopersCommand(opts *RootOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "developers",
		Short: "List developers (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := opts.principal(auth.RoleAdmin)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			view := listquery.NewView(listquery.Fetcher[backend.Developer](client, listquery.Request{
				Resource: listquery.Developers,
				PageSize: flags.size(opts.cfg.PageSize),
				Token:    principal.Token,
			}))
			return renderList(cmd.Context(), view, flags.page, "Failed to load developers.",
				[]string{"ID", "NAME", "EMAIL", "PHONE", "PROJECTS"},
				func(d backend.Developer) []string {
					return []string{strconv.FormatInt(d.ID, 10), d.Name, d.Email, d.Phone, strconv.Itoa(d.TotalProjects)}
				})
		},
	}
	flags.bind(cmd, false)
	cmd.AddCommand(newDeveloperSearchCommand(opts))
	return cmd
}

func newDeveloperSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find developers to assign (admin, manager)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.principal(auth.RoleAdmin, auth.RoleManager); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			lookup, err := suggest.NewLookup(client, opts.cfg.SuggestionCacheSize, opts.logger)
			if err != nil {
				return err
			}
			matches, err := lookup.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return errors.New(errorText(err, "Failed to fetch developers."))
			}
			if len(matches) == 0 {
				pterm.Info.Println("No developers match.")
				return nil
			}
			data := pterm.TableData{{"ID", "NAME"}}
			for _, m := range matches {
				data = append(data, []string{strconv.FormatInt(m.ID, 10), m.Name})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

// NewProjectsCommand creates the projects command.
func NewProjectsCommand(opts *RootOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects (admin, manager)",
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := opts.principal(auth.RoleAdmin, auth.RoleManager)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			filter, err := listquery.ParseFilter(flags.status, flags.project)
			if err != nil {
				return err
			}

			if principal.Role == auth.RoleAdmin {
				view := listquery.NewFilteredView(listquery.Fetcher[backend.AdminProject](client, listquery.Request{
					Resource: listquery.AdminProjects,
					PageSize: flags.size(opts.cfg.PageSize),
					Token:    principal.Token,
				}))
				view.SetFilter(filter)
				return renderList(cmd.Context(), view, flags.page, "Failed to load projects.",
					[]string{"ID", "PROJECT", "MANAGER", "DEVELOPERS", "STATUS", "STARTED"},
					func(p backend.AdminProject) []string {
						return []string{strconv.FormatInt(p.ID, 10), p.Name, p.ManagerName, strings.Join(p.Developers, ", "), p.Status, p.StartDate}
					})
			}

			view := listquery.NewFilteredView(listquery.Fetcher[backend.ManagerProject](client, listquery.Request{
				Resource: listquery.ManagerProjects,
				PageSize: flags.size(opts.cfg.PageSize),
				Token:    principal.Token,
			}))
			view.SetFilter(filter)
			return renderList(cmd.Context(), view, flags.page, "Failed to load projects.",
				[]string{"ID", "PROJECT", "DEVELOPERS", "STATUS", "STARTED", "DUE"},
				func(p backend.ManagerProject) []string {
					return []string{strconv.FormatInt(p.ID, 10), p.Name, strings.Join(p.DeveloperNames(), ", "), p.Status, p.StartDay(), p.CompletionDate}
				})
		},
	}
	flags.bind(cmd, true)
	return cmd
}
