package main

import (
	"github.com/spf13/cobra"

	"github.com/devmarvs/pmboard/desktop"
)

// NewDesktopCommand creates the desktop command.
func NewDesktopCommand(opts *RootOptions) *cobra.Command {
	var (
		iconPath string
		width    float32
		height   float32
	)

	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Open the dashboard in a desktop window",
		Long:  "Opens the dashboards in a native window. The login is shared with the terminal commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			store, err := opts.sessions()
			if err != nil {
				return err
			}
			shell, err := desktop.NewShell(desktop.ShellOptions{
				Client:       client,
				Sessions:     store,
				PageSize:     opts.cfg.PageSize,
				TaskPageSize: opts.cfg.TaskPageSize,
				Logger:       opts.logger,
			})
			if err != nil {
				return err
			}

			window := desktop.WindowConfig{Title: "pmboard", Width: width, Height: height}
			if iconPath != "" {
				icon, err := desktop.LoadIcon(iconPath)
				if err != nil {
					return err
				}
				window.Icon = icon
			}
			desktop.Run(shell, window)
			return nil
		},
	}
	cmd.Flags().StringVar(&iconPath, "icon", "", "window icon (PNG)")
	cmd.Flags().Float32Var(&width, "width", 1024, "window width")
	cmd.Flags().Float32Var(&height, "height", 720, "window height")
	return cmd
}
