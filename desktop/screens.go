package desktop

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/listquery"
	"github.com/devmarvs/pmboard/suggest"
)

const msgGenericFailure = "Something went wrong. Please try again."

type ui struct {
	shell *Shell
	win   fyne.Window

	mu      sync.Mutex
	cancel  context.CancelFunc
	closers []func()
}

func newUI(shell *Shell, win fyne.Window) *ui {
	return &ui{shell: shell, win: win}
}

// show tears down the current screen and builds the one the gate allows.
func (u *ui) show(screen Screen) {
	u.teardown()
	ctx, cancel := context.WithCancel(context.Background())
	u.mu.Lock()
	u.cancel = cancel
	u.mu.Unlock()

	var content fyne.CanvasObject
	switch u.shell.Resolve(screen) {
	case ScreenAdmin:
		content = u.adminScreen(ctx)
	case ScreenManager:
		content = u.managerScreen(ctx)
	case ScreenDeveloper:
		content = u.developerScreen(ctx)
	case ScreenUnauthorized:
		content = u.unauthorizedScreen()
	default:
		content = u.loginScreen(ctx)
	}
	u.win.SetContent(content)
}

func (u *ui) onTeardown(fn func()) {
	u.mu.Lock()
	u.closers = append(u.closers, fn)
	u.mu.Unlock()
}

func (u *ui) teardown() {
	u.mu.Lock()
	closers := u.closers
	cancel := u.cancel
	u.closers = nil
	u.cancel = nil
	u.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, fn := range closers {
		fn()
	}
}

func (u *ui) logout() {
	if err := u.shell.Logout(); err != nil {
		dialog.ShowError(err, u.win)
	}
	u.show(ScreenLogin)
}

func (u *ui) toast(message string) {
	if message != "" {
		dialog.ShowInformation("pmboard", message, u.win)
	}
}

func (u *ui) failure(err error, fallback string) {
	dialog.ShowInformation("pmboard", errorText(err, fallback), u.win)
}

// errorText prefers a form message, then the upstream message.
func errorText(err error, fallback string) string {
	if apperr.Is(err, apperr.CodeValidation) {
		return apperr.As(err).Message
	}
	return backend.UserMessage(err, fallback)
}

func (u *ui) header(title string) fyne.CanvasObject {
	name := ""
	if principal, ok := u.shell.Principal(); ok {
		name = principal.Name
	}
	return container.NewBorder(nil, nil,
		widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel(name), widget.NewButton("Logout", u.logout)),
	)
}

func (u *ui) loginScreen(ctx context.Context) fyne.CanvasObject {
	email := widget.NewEntry()
	email.SetPlaceHolder("you@example.com")
	password := widget.NewPasswordEntry()
	status := widget.NewLabel("")

	form := &widget.Form{
		Items: []*widget.FormItem{
			widget.NewFormItem("Email", email),
			widget.NewFormItem("Password", password),
		},
		SubmitText: "Login",
	}
	form.OnSubmit = func() {
		creds := backend.Credentials{Email: email.Text, Password: password.Text}
		go func() {
			screen, message, err := u.shell.Login(ctx, creds)
			if err != nil {
				status.SetText(errorText(err, msgGenericFailure))
				return
			}
			u.show(screen)
			u.toast(message)
		}()
	}
	return container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle("Project Management Dashboard", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		form,
		status,
	))
}

func (u *ui) unauthorizedScreen() fyne.CanvasObject {
	return container.NewCenter(container.NewVBox(
		widget.NewLabel("Unauthorized Access"),
		widget.NewButton("Go home", func() { u.show(u.shell.Start()) }),
	))
}

func (u *ui) adminScreen(ctx context.Context) fyne.CanvasObject {
	stats := widget.NewLabel("Loading stats...")
	go func() {
		s, err := u.shell.AdminStats(ctx)
		if err != nil {
			stats.SetText(errorText(err, "Failed to load dashboard stats."))
			return
		}
		stats.SetText(fmt.Sprintf("Projects: %d   Developers: %d   Tasks: %d", s.TotalProjects, s.TotalDevelopers, s.TotalTasks))
	}()

	view := u.shell.Developers()
	u.onTeardown(view.Close)
	table := listPanel(ctx, view, []string{"ID", "Name", "Email", "Phone", "Projects"}, func(d backend.Developer, col int) string {
		switch col {
		case 0:
			return strconv.FormatInt(d.ID, 10)
		case 1:
			return d.Name
		case 2:
			return d.Email
		case 3:
			return d.Phone
		default:
			return strconv.Itoa(d.TotalProjects)
		}
	})

	deleteID := widget.NewEntry()
	deleteID.SetPlaceHolder("developer id")
	deleteButton := widget.NewButton("Delete developer", func() {
		id, err := strconv.ParseInt(strings.TrimSpace(deleteID.Text), 10, 64)
		if err != nil {
			u.toast("Enter a developer id.")
			return
		}
		dialog.ShowConfirm("Delete developer", "Delete developer "+deleteID.Text+"?", func(ok bool) {
			if !ok {
				return
			}
			go func() {
				message, err := u.shell.DeleteDeveloper(ctx, id)
				if err != nil {
					u.failure(err, "Failed to delete developer.")
					return
				}
				u.toast(message)
				_ = view.Retry(ctx)
			}()
		}, u.win)
	})

	go view.Load(ctx, 1)
	return container.NewBorder(
		container.NewVBox(u.header("Admin"), stats),
		container.NewBorder(nil, nil, nil, deleteButton, deleteID),
		nil, nil,
		table,
	)
}

func (u *ui) managerScreen(ctx context.Context) fyne.CanvasObject {
	view := u.shell.ManagerTasks()
	u.onTeardown(view.Close)

	table := listPanel(ctx, view, []string{"Task", "Project", "Developer", "Status", "Due"}, func(t backend.ManagerTask, col int) string {
		switch col {
		case 0:
			return t.Name
		case 1:
			return t.ProjectName
		case 2:
			return t.DeveloperName
		case 3:
			return t.Status
		default:
			return t.CompletionDate
		}
	})

	filter := listquery.DefaultFilter()
	status := widget.NewSelect([]string{listquery.StatusAll, listquery.StatusTodo, listquery.StatusInProgress, listquery.StatusDone}, nil)
	project := widget.NewSelect([]string{listquery.ProjectAll}, nil)
	status.SetSelected(filter.Status)
	project.SetSelected(filter.Project)
	status.OnChanged = func(value string) {
		filter.Status = value
		view.SetFilter(filter)
	}
	project.OnChanged = func(value string) {
		filter.Project = value
		view.SetFilter(filter)
	}
	view.OnChange(func(s listquery.Snapshot[backend.ManagerTask]) {
		if s.State != listquery.StateLoaded {
			return
		}
		project.Options = append([]string{listquery.ProjectAll}, view.ProjectNames()...)
		project.Refresh()
	})

	tasks := container.NewBorder(
		container.NewHBox(widget.NewLabel("Status"), status, widget.NewLabel("Project"), project),
		nil, nil, nil,
		table,
	)
	go view.Load(ctx, 1)

	return container.NewBorder(u.header("Manager"), nil, nil, nil, container.NewAppTabs(
		container.NewTabItem("Tasks", tasks),
		container.NewTabItem("New task", u.taskForm(ctx, func() { _ = view.Retry(ctx) })),
	))
}

func (u *ui) taskForm(ctx context.Context, created func()) fyne.CanvasObject {
	projectID := widget.NewEntry()
	taskName := widget.NewEntry()
	dueDate := widget.NewEntry()
	dueDate.SetPlaceHolder("YYYY-MM-DD")

	dropdown := u.shell.AssigneeDropdown()
	u.onTeardown(func() { dropdown.ClosePending() })
	assignee, suggestions := assigneePicker(ctx, dropdown)

	form := &widget.Form{
		Items: []*widget.FormItem{
			widget.NewFormItem("Project ID", projectID),
			widget.NewFormItem("Task", taskName),
			widget.NewFormItem("Developer", container.NewVBox(assignee, suggestions)),
			widget.NewFormItem("Due", dueDate),
		},
		SubmitText: "Create task",
	}
	form.OnSubmit = func() {
		project, _ := strconv.ParseInt(strings.TrimSpace(projectID.Text), 10, 64)
		var developerID int64
		if selected := dropdown.State().Selected; selected != nil {
			developerID = selected.ID
		}
		task := backend.NewTask{
			ProjectID:      project,
			TaskName:       strings.TrimSpace(taskName.Text),
			DeveloperID:    developerID,
			CompletionDate: strings.TrimSpace(dueDate.Text),
		}
		go func() {
			message, err := u.shell.CreateTask(ctx, task)
			if err != nil {
				u.failure(err, "Failed to create task.")
				return
			}
			u.toast(message)
			created()
		}()
	}
	return form
}

// assigneeEntry reports focus changes to the dropdown.
type assigneeEntry struct {
	widget.Entry
	onFocus func()
	onBlur  func()
}

func newAssigneeEntry() *assigneeEntry {
	e := &assigneeEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *assigneeEntry) FocusGained() {
	e.Entry.FocusGained()
	if e.onFocus != nil {
		e.onFocus()
	}
}

func (e *assigneeEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onBlur != nil {
		e.onBlur()
	}
}

// assigneePicker binds a text entry and a suggestion list to dropdown.
func assigneePicker(ctx context.Context, dropdown *suggest.Dropdown) (*assigneeEntry, *widget.List) {
	var (
		mu        sync.Mutex
		items     []backend.Suggestion
		selecting bool
	)
	entry := newAssigneeEntry()
	entry.SetPlaceHolder("Search developers")

	list := widget.NewList(
		func() int {
			mu.Lock()
			defer mu.Unlock()
			return len(items)
		},
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			mu.Lock()
			defer mu.Unlock()
			if id < len(items) {
				o.(*widget.Label).SetText(items[id].Name)
			}
		},
	)
	list.Hide()
	list.OnSelected = func(id widget.ListItemID) {
		mu.Lock()
		if id >= len(items) {
			mu.Unlock()
			return
		}
		picked := items[id].ID
		mu.Unlock()
		if suggestion, ok := dropdown.Select(picked); ok {
			mu.Lock()
			selecting = true
			mu.Unlock()
			entry.SetText(suggestion.Name)
			mu.Lock()
			selecting = false
			mu.Unlock()
		}
		list.UnselectAll()
	}

	dropdown.OnChange(func(state suggest.DropdownState) {
		mu.Lock()
		items = state.Items
		mu.Unlock()
		if state.Visible && len(state.Items) > 0 {
			list.Show()
		} else {
			list.Hide()
		}
		list.Refresh()
	})

	entry.OnChanged = func(text string) {
		mu.Lock()
		skip := selecting
		mu.Unlock()
		if skip {
			return
		}
		go func() { _ = dropdown.Input(ctx, text) }()
	}
	entry.onFocus = dropdown.Focus
	entry.onBlur = dropdown.Blur
	return entry, list
}

func (u *ui) developerScreen(ctx context.Context) fyne.CanvasObject {
	profile := widget.NewLabel("")
	stats := widget.NewLabel("Loading stats...")
	go func() {
		p := u.shell.Profile(ctx)
		profile.SetText(p.Name + "  " + p.Email)
		s, err := u.shell.TaskStats(ctx)
		if err != nil {
			stats.SetText(errorText(err, "Failed to load dashboard stats."))
			return
		}
		stats.SetText(fmt.Sprintf("Completed: %d   Active: %d   New: %d", s.Completed, s.InProgress, s.Todo))
	}()

	view := u.shell.CompletedTasks()
	u.onTeardown(view.Close)
	table := listPanel(ctx, view, []string{"ID", "Title", "Project", "Assigned by", "Comment"}, func(t backend.CompletedTask, col int) string {
		switch col {
		case 0:
			return strconv.FormatInt(t.ID, 10)
		case 1:
			return t.Title
		case 2:
			return t.ProjectName
		case 3:
			return t.AssignedBy
		default:
			return t.Comment
		}
	})

	taskID := widget.NewEntry()
	taskID.SetPlaceHolder("task id")
	comment := widget.NewEntry()
	comment.SetPlaceHolder("Add a comment")
	send := widget.NewButton("Comment", func() {
		id, _ := strconv.ParseInt(strings.TrimSpace(taskID.Text), 10, 64)
		note := backend.Comment{Comment: strings.TrimSpace(comment.Text)}
		go func() {
			message, err := u.shell.AddComment(ctx, id, note)
			if err != nil {
				u.failure(err, "Failed to add comment.")
				return
			}
			comment.SetText("")
			u.toast(message)
			_ = view.Retry(ctx)
		}()
	})

	go view.Load(ctx, 1)
	return container.NewBorder(
		container.NewVBox(u.header("Developer"), profile, stats),
		container.NewBorder(nil, nil, taskID, send, comment),
		nil, nil,
		table,
	)
}

// listPanel renders a view as a table with a pager. Cell text comes from
// cell; the header row is columns.
func listPanel[T any](ctx context.Context, view *listquery.View[T], columns []string, cell func(T, int) string) fyne.CanvasObject {
	var (
		mu   sync.Mutex
		snap listquery.Snapshot[T]
	)

	table := widget.NewTable(
		func() (int, int) {
			mu.Lock()
			defer mu.Unlock()
			return len(snap.Items) + 1, len(columns)
		},
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(columns[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			mu.Lock()
			defer mu.Unlock()
			if id.Row-1 < len(snap.Items) {
				label.SetText(cell(snap.Items[id.Row-1], id.Col))
			}
		},
	)
	for i := range columns {
		table.SetColumnWidth(i, 160)
	}

	status := widget.NewLabel("")
	prev := widget.NewButton("Previous", func() { go func() { _ = view.Prev(ctx) }() })
	next := widget.NewButton("Next", func() { go func() { _ = view.Next(ctx) }() })
	retry := widget.NewButton("Retry", func() { go func() { _ = view.Retry(ctx) }() })
	prev.Disable()
	next.Disable()
	retry.Hide()

	view.OnChange(func(s listquery.Snapshot[T]) {
		mu.Lock()
		snap = s
		mu.Unlock()

		switch s.State {
		case listquery.StateLoading:
			status.SetText("Loading...")
		case listquery.StateFailed:
			status.SetText(s.Error)
			retry.Show()
		default:
			status.SetText(fmt.Sprintf("Page %d of %d", s.Page, s.TotalPages))
			retry.Hide()
		}
		if s.HasPrev && s.State == listquery.StateLoaded {
			prev.Enable()
		} else {
			prev.Disable()
		}
		if s.HasNext && s.State == listquery.StateLoaded {
			next.Enable()
		} else {
			next.Disable()
		}
		table.Refresh()
	})

	return container.NewBorder(nil, container.NewHBox(prev, status, next, retry), nil, nil, table)
}
