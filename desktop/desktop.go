// Package desktop is the Fyne dashboard. It runs the same core as the
// gateway in-process: the access gate picks the screen, list views drive
// the tables and the assignee dropdown drives the task form.
package desktop

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

// WindowConfig configures the dashboard window.
type WindowConfig struct {
	Title  string
	Width  float32
	Height float32
	Icon   fyne.Resource
}

// Run opens the dashboard on the shell's start screen and blocks until the
// window closes.
func Run(shell *Shell, cfg WindowConfig) {
	a := app.NewWithID("com.devmarvs.pmboard")
	if cfg.Title == "" {
		cfg.Title = "pmboard"
	}
	w := a.NewWindow(cfg.Title)
	if cfg.Icon != nil {
		a.SetIcon(cfg.Icon)
		w.SetIcon(cfg.Icon)
	}

	u := newUI(shell, w)
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("Session",
			fyne.NewMenuItem("Home", func() { u.show(shell.Start()) }),
			fyne.NewMenuItem("Logout", u.logout),
		),
	))
	w.SetCloseIntercept(func() {
		u.teardown()
		w.Close()
	})
	if cfg.Width > 0 && cfg.Height > 0 {
		w.Resize(fyne.NewSize(cfg.Width, cfg.Height))
	}
	u.show(shell.Start())
	w.ShowAndRun()
}

// LoadIcon loads an app icon from disk.
func LoadIcon(path string) (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(path)
}
