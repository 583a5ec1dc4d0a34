package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/backend"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var (
		email    string
		password string
		stdin    bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Long: `Exchanges email and password for a session and stores it in the session file.

The password is prompted for when neither --password nor --stdin is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = readPassword(opts, stdin)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			client, err := opts.client()
			if err != nil {
				return err
			}
			result, err := client.Login(cmd.Context(), backend.Credentials{Email: email, Password: password})
			if err != nil {
				return errors.New(errorText(err, "Something went wrong. Please try again."))
			}

			store, err := opts.sessions()
			if err != nil {
				return err
			}
			sess, err := store.Load()
			if err != nil {
				return err
			}
			sess.ClearPrincipal()
			if err := sess.SetPrincipal(result.Principal); err != nil {
				return err
			}
			if err := store.Write(sess); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			pterm.Success.Println(result.Message)
			pterm.Info.Printf("Logged in as %s (%s)\n", result.Principal.Name, result.Principal.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (use --stdin to avoid shell history)")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read the password from stdin")
	return cmd
}

func readPassword(opts *RootOptions, stdin bool) (string, error) {
	if file, ok := opts.In.(*os.File); ok && !stdin && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(opts.Out, "Password: ")
		raw, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(opts.Out)
		return string(raw), err
	}
	scanner := bufio.NewScanner(opts.In)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r\n"), nil
	}
	return "", scanner.Err()
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.sessions()
			if err != nil {
				return err
			}
			if err := store.Remove(); err != nil {
				return err
			}
			pterm.Success.Println("Logged out")
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := opts.principal(auth.RoleAdmin, auth.RoleManager, auth.RoleDeveloper)
			if err != nil {
				return err
			}
			data := pterm.TableData{
				{"ID", "NAME", "ROLE", "HOME"},
				{strconv.FormatInt(principal.ID, 10), principal.Name, string(principal.Role), principal.Role.HomePath()},
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}
