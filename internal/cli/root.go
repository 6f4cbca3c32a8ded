// Package cli implements hockeyctl, a terminal front end for the session
// store, onboarding guard and entitlement engine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/guard"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/localstore"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/monitor"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/services"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/services/lifecycle"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/session"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/directory"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/logger"
)

// Remote is everything hockeyctl needs from the account directory.
type Remote interface {
	session.Directory
	services.AccountSyncer
	Catalog
	Health(ctx context.Context) error
}

// Catalog is the read-only player registry and entitlement table of the directory.
type Catalog interface {
	Player(ctx context.Context, id string) (*domain.Player, error)
	Players(ctx context.Context, team string, limit, offset int) ([]domain.Player, error)
	Entitlements(ctx context.Context) (map[string]domain.SubscriptionTier, error)
}

// Options inject collaborators, mostly for tests. Zero values select the
// real implementations.
type Options struct {
	Remote Remote
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// App carries the per-invocation state shared by all commands.
type App struct {
	opts Options
	v    *viper.Viper

	cfgFile   string
	serverURL string
	output    string

	logger    *zap.Logger
	manager   *lifecycle.Manager
	local     *localstore.Store
	remote    Remote
	store     *session.Store
	processor *services.SyncProcessor
	guard     *guard.Guard
	monitor   *monitor.Monitor
	reader    *bufio.Reader
}

// Execute runs hockeyctl with os.Args.
func Execute() error {
	return New(Options{}).Run(context.Background(), os.Args[1:])
}

func New(opts Options) *App {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	return &App{opts: opts, v: viper.New()}
}

// Run executes one command line and releases every resource it opened.
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.opts.In)
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hockeyctl",
		Short: "Youth hockey account onboarding from the terminal",
		Long: `hockeyctl signs in to the hockey account directory, walks an account
through role selection and player linking, manages the subscription tier and
answers which features and destinations are open to the current session.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.open(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default $HOME/.hockeyctl/config.yaml)")
	flags.StringVar(&a.serverURL, "server", "", "directory URL (overrides config)")
	flags.StringVarP(&a.output, "output", "o", "", "output format: table, json, yaml")

	root.AddCommand(
		a.newAuthCmd(),
		a.newOnboardingCmd(),
		a.newSubscriptionCmd(),
		a.newFeatureCmd(),
		a.newRouteCmd(),
		a.newSyncCmd(),
		a.newPlayersCmd(),
	)
	return root
}

func (a *App) loadConfig() error {
	v := a.v
	home, _ := os.UserHomeDir()
	configDir := filepath.Join(home, ".hockeyctl")

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HOCKEYCTL")
	v.AutomaticEnv()

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_path", filepath.Join(configDir, "session.db"))
	v.SetDefault("log_level", "warn")
	v.SetDefault("sync_interval", 30*time.Second)
	v.SetDefault("sync_max_retries", 5)
	v.SetDefault("sync_max_age", 7*24*time.Hour)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("output", "table")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	if a.serverURL != "" {
		v.Set("server_url", a.serverURL)
	}
	if a.output != "" {
		v.Set("output", a.output)
	}
	return nil
}

// open wires the session store to the local bbolt file and the directory.
func (a *App) open(ctx context.Context) error {
	log, err := logger.New(logger.Config{
		Level:    a.v.GetString("log_level"),
		Encoding: "console",
		Output:   "stderr",
	})
	if err != nil {
		return err
	}
	a.logger = log
	a.manager = lifecycle.New(5*time.Second, log)

	a.local, err = localstore.Open(a.v.GetString("session_path"))
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	a.manager.RegisterCloser("localstore", a.local)

	a.remote = a.opts.Remote
	if a.remote == nil {
		a.remote = directory.New(directory.Config{
			BaseURL: a.v.GetString("server_url"),
			Timeout: a.v.GetDuration("timeout"),
			Logger:  log,
		})
	}

	a.monitor = monitor.New(a.v.GetDuration("sync_interval"), log).Register("directory", a.remote.Health)
	health := newLazyHealth(a.monitor)
	a.processor = services.NewSyncProcessor(a.local, health, a.remote, log, services.ProcessorConfig{
		Interval:   a.v.GetDuration("sync_interval"),
		MaxRetries: a.v.GetInt("sync_max_retries"),
		MaxAge:     a.v.GetDuration("sync_max_age"),
	})

	a.store, err = session.Open(ctx, session.Options{
		Directory: a.remote,
		Persister: a.local.Sessions(),
		Sync:      a.processor,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	a.processor.WithCredentials(a.store)
	a.guard = guard.New(a.store, log)
	return nil
}

func (a *App) close() {
	if a.manager == nil {
		return
	}
	if err := a.manager.Shutdown(context.Background()); err != nil {
		a.logger.Warn("shutdown failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// timeout bounds one remote interaction.
func (a *App) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.v.GetDuration("timeout"))
}

// failure turns a store error into the message the user should see.
func (a *App) failure(action string, err error) error {
	msg := a.store.Error()
	if msg == "" {
		msg = messageOf(err)
	}
	return a.describe(action, msg, err)
}

// lookupFailure reports a catalog read error. Catalog reads never touch the
// session error slot.
func (a *App) lookupFailure(action string, err error) error {
	return a.describe(action, messageOf(err), err)
}

func (a *App) describe(action, msg string, err error) error {
	if directory.IsUnavailable(err) {
		return fmt.Errorf("%s: %s (is the directory running at %s?)", action, msg, a.v.GetString("server_url"))
	}
	return fmt.Errorf("%s: %s", action, msg)
}
