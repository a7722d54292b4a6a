package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/dental-console/internal/config"
	"github.com/vcscsvcscs/dental-console/internal/logging"
	"go.uber.org/zap"
)

// cli carries the global flags and the lazily built App
type cli struct {
	out        io.Writer
	errOut     io.Writer
	in         io.Reader
	configFile string
	apiURL     string
	verbose    bool
	app        *App
}

// Execute runs dentalctl with args and returns the process exit code
func Execute(ctx context.Context, args []string, out, errOut io.Writer, in io.Reader) int {
	c := &cli{out: out, errOut: errOut, in: in}
	return c.execute(ctx, args)
}

func (c *cli) execute(ctx context.Context, args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.SetIn(c.in)

	err := root.ExecuteContext(ctx)
	if c.app != nil && c.app.Logger != nil {
		_ = c.app.Logger.Sync()
	}
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrReported) {
		fmt.Fprintln(c.errOut, "Error:", err)
	}
	return 1
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dentalctl",
		Short:         "Dental clinic console",
		Long:          "dentalctl is a console for the clinic backend: schedules, cases, inventory, billing and notifications for admins, doctors and patients.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend base URL (overrides DENTAL_API_BASE_URL)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(c.loginCmd())
	root.AddCommand(c.logoutCmd())
	root.AddCommand(c.whoamiCmd())
	root.AddCommand(c.prefsCmd())
	root.AddCommand(c.adminCmd())
	root.AddCommand(c.doctorCmd())
	root.AddCommand(c.patientCmd())
	root.AddCommand(c.notificationsCmd())
	return root
}

// init builds the App once; an App injected beforehand is kept
func (c *cli) init() error {
	if c.app != nil {
		return nil
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --api-url: %w", err)
		}
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging, cfg.Server.Environment)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("storage_path", cfg.Session.StoragePath),
	)

	app, err := NewApp(cfg, logger, c.out, c.in)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}
