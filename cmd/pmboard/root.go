package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/config"
	"github.com/devmarvs/pmboard/httpclient"
	"github.com/devmarvs/pmboard/logging"
	"github.com/devmarvs/pmboard/session"
)

// errUnauthorized is returned when the logged-in role may not run a command.
var errUnauthorized = errors.New("unauthorized access")

// displayText is the message printed for a failed command.
func displayText(err error) string {
	if errors.Is(err, errUnauthorized) {
		return "Unauthorized Access"
	}
	return err.Error()
}

// RootOptions holds global flags and the state every command shares.
type RootOptions struct {
	ConfigPath  string
	SecretsPath string
	EnvFile     string
	SessionFile string
	BackendURL  string
	Verbose     bool

	// In is read for prompted input; Out receives rendered output.
	In  io.Reader
	Out io.Writer

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand creates the pmboard CLI.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cmd := &cobra.Command{
		Use:           "pmboard",
		Short:         "pmboard - role-based project management dashboard",
		Long:          "pmboard serves the admin, manager and developer dashboards and lets you use them from a terminal or a desktop window.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.json, .yaml or .yml)")
	cmd.PersistentFlags().StringVar(&opts.SecretsPath, "secrets", "", "secrets file layered over --config (session_key, database_url)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file applied before PMBOARD_ overrides")
	cmd.PersistentFlags().StringVar(&opts.SessionFile, "session-file", "", "where the CLI keeps its login (default: user config dir)")
	cmd.PersistentFlags().StringVar(&opts.BackendURL, "backend", "", "backend base URL (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewTasksCommand(opts))
	cmd.AddCommand(NewDevelopersCommand(opts))
	cmd.AddCommand(NewProjectsCommand(opts))
	cmd.AddCommand(NewDesktopCommand(opts))

	return cmd
}

// load applies the .env file, then the config and secrets files, then
// PMBOARD_ env vars, then flags.
func (o *RootOptions) load(cmd *cobra.Command) error {
	if o.EnvFile != "" {
		err := godotenv.Load(o.EnvFile)
		if err != nil && !(errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file")) {
			return fmt.Errorf("env file: %w", err)
		}
	}

	loader := config.Loader[config.Config]{Defaults: config.Default, ApplyEnv: config.LoadFromEnv}
	cfg, err := loader.Load(config.Profile{
		BasePath:    o.ConfigPath,
		SecretsPath: o.SecretsPath,
		EnvPrefix:   config.EnvPrefix,
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.BackendURL != "" {
		cfg.BackendURL = o.BackendURL
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	o.cfg = cfg
	o.logger = logging.NewLogger(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cmd.ErrOrStderr(),
		Service: "pmboard",
	})

	pterm.SetDefaultOutput(o.Out)
	return nil
}

func (o *RootOptions) client() (*backend.Client, error) {
	scheme, err := httpclient.ParseScheme(o.cfg.AuthScheme)
	if err != nil {
		return nil, err
	}
	options := httpclient.DefaultClientOptions()
	options.AuthScheme = scheme
	options.Timeout = o.cfg.RequestTimeout
	return backend.New(backend.Options{
		BaseURL:    o.cfg.BackendURL,
		HTTPClient: httpclient.NewClient(options),
		Logger:     o.logger,
	})
}

func (o *RootOptions) sessions() (*session.FileStore, error) {
	return session.NewFileStore(o.SessionFile)
}

// principal runs the access gate for a command, the way the gateway gates
// a route, before anything is fetched.
func (o *RootOptions) principal(roles ...auth.Role) (*auth.Principal, error) {
	store, err := o.sessions()
	if err != nil {
		return nil, err
	}
	sess, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	principal, _ := sess.Principal()
	switch auth.Decide(principal, auth.Roles(roles...)) {
	case auth.Allow:
		return principal, nil
	case auth.RedirectUnauthorized:
		return nil, errUnauthorized
	default:
		return nil, errors.New("not logged in; run pmboard login")
	}
}

// errorText prefers a form message, then the upstream message.
func errorText(err error, fallback string) string {
	if apperr.Is(err, apperr.CodeValidation) {
		return apperr.As(err).Message
	}
	return backend.UserMessage(err, fallback)
}
