// Package cmd implements the mofh command line tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Lebyy/mofh-go/internal/config"
	"github.com/Lebyy/mofh-go/internal/credentials"
	pkghttp "github.com/Lebyy/mofh-go/pkg/http"
	"github.com/Lebyy/mofh-go/pkg/logging"
	"github.com/Lebyy/mofh-go/pkg/mofh"
	"github.com/Lebyy/mofh-go/pkg/observability"
	"github.com/Lebyy/mofh-go/pkg/ports"
	"github.com/Lebyy/mofh-go/pkg/resilience"
)

// app is the state shared by all commands of one invocation
type app struct {
	v       *viper.Viper
	out     io.Writer
	errOut  io.Writer
	verbose bool
	envFile string

	// httpClient replaces the default transport (tests)
	httpClient ports.HTTPClient

	cfg      *config.Config
	logger   *logging.ZapLoggerAdapter
	timeouts *resilience.TimeoutConfig
	registry *prometheus.Registry
	client   *mofh.Client
	cancel   context.CancelFunc
}

// option customizes the root command
type option func(*app)

func withOutput(out, errOut io.Writer) option {
	return func(a *app) {
		a.out = out
		a.errOut = errOut
	}
}

func withHTTPClient(c ports.HTTPClient) option {
	return func(a *app) {
		a.httpClient = c
	}
}

// newRootCmd builds the command tree
func newRootCmd(opts ...option) (*cobra.Command, *app) {
	a := &app{
		v:      config.New(),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "mofh",
		Short: "MyOwnFreeHost reseller panel client",
		Long: `mofh talks to the MyOwnFreeHost reseller API: it creates, suspends and
unsuspends hosting accounts, changes their passwords and looks up domains.

Credentials come from MOFH_API_USER / MOFH_API_KEY or from a secret backend
selected with MOFH_SECRETS_BACKEND (local, aws, vault).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	flags := rootCmd.PersistentFlags()
	flags.String("base-url", "", "panel API base URL (default "+mofh.DefaultBaseURL+")")
	flags.StringP("output", "o", "", "output format: yaml or json (default yaml)")
	flags.Duration("timeout", 0, "deadline for one panel call (default 45s)")
	flags.String("metrics-textfile", "", "write panel call metrics to this file in Prometheus text format")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&a.envFile, "env-file", "", "load environment from this file (default .env if present)")

	_ = a.v.BindPFlag(config.KeyBaseURL, flags.Lookup("base-url"))
	_ = a.v.BindPFlag(config.KeyOutput, flags.Lookup("output"))
	_ = a.v.BindPFlag(config.KeyTimeout, flags.Lookup("timeout"))
	_ = a.v.BindPFlag(config.KeyMetricsTextfile, flags.Lookup("metrics-textfile"))

	rootCmd.AddCommand(
		newCreateAccountCmd(a),
		newSuspendCmd(a),
		newUnsuspendCmd(a),
		newPasswdCmd(a),
		newCheckDomainCmd(a),
		newUserDomainsCmd(a),
		newDomainUserCmd(a),
		newVersionCmd(a),
	)

	return rootCmd, a
}

// Execute runs the CLI and exits non-zero on failure. SIGINT and SIGTERM
// cancel the in-flight panel call.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd, a := newRootCmd()
	code := a.run(ctx, rootCmd, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the command tree with args and returns the process exit code
func (a *app) run(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	a.close()

	if err != nil {
		a.printError(err)
		return exitCode(err)
	}
	return 0
}

// setup loads configuration, resolves credentials and builds the panel client
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// help, bare "mofh" and shell completion need no panel client
	if cmd == cmd.Root() || cmd.Name() == "help" || cmd.Name() == "completion" ||
		(cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}

	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logger.Level = "debug"
	}
	a.cfg = cfg

	logger, err := logging.NewZapLoggerWithLevel(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.timeouts = resilience.DefaultTimeoutConfig().WithPanelCall(cfg.Panel.Timeout)
	ctx, cancel := a.timeouts.CommandContext(cmd.Context())
	a.cancel = cancel
	cmd.SetContext(ctx)

	sm, err := credentials.NewSecretManager(ctx, cfg.Secrets, logger.Zap())
	if err != nil {
		return fmt.Errorf("failed to initialize secret manager: %w", err)
	}
	creds, err := credentials.NewResolver(cfg, sm, logger.Zap()).
		WithTimeouts(a.timeouts).
		Resolve(ctx)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	metrics, err := observability.NewPanelMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	httpClient := a.httpClient
	if httpClient == nil {
		transportCfg := pkghttp.PanelClientConfig()
		transportCfg.UserAgent = "mofh/" + Version
		httpClient = pkghttp.NewHTTPClient(transportCfg, cfg.Panel.Timeout)
	}

	client, err := mofh.NewClient(
		mofh.Config{
			Username: creds.APIUser,
			Password: creds.APIKey,
			BaseURL:  cfg.Panel.BaseURL,
		},
		mofh.WithHTTPClient(httpClient),
		mofh.WithLogger(logger),
		mofh.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	a.client = client

	logger.Zap().Debug("CLI initialized",
		zap.String("command", cmd.Name()),
		zap.String("base_url", client.BaseURL()),
		zap.String("secrets_backend", cfg.Secrets.Backend),
		zap.Duration("panel_timeout", a.timeouts.PanelCall),
	)

	return nil
}

// callContext bounds one panel call
func (a *app) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return a.timeouts.PanelCallContext(cmd.Context())
}

// close flushes metrics and logs and releases the command deadline
func (a *app) close() {
	if a.cfg != nil && a.cfg.MetricsTextfile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsTextfile, a.registry); err != nil && a.logger != nil {
			a.logger.Zap().Warn("Failed to write metrics textfile",
				zap.String("path", a.cfg.MetricsTextfile),
				zap.Error(err),
			)
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.cancel != nil {
		a.cancel()
	}
}
