package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/cache"
	"github.com/AyushShukla12112005/trackctl/internal/logging"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
	"github.com/AyushShukla12112005/trackctl/internal/output"
	"github.com/AyushShukla12112005/trackctl/internal/session"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui       *output.UI
	log      *logrus.Logger
	client   *api.Client
	sessions *session.Store
	notifier *notify.Notifier
	cacheDB  *cache.Cache

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "Bug tracker client - boards, issues, and projects from the terminal",
	Long: `trackctl is a terminal client for the issue tracker backend.
It renders kanban boards and dashboards, moves cards with instant
optimistic feedback, and keeps concurrent views in sync through
change signals.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	closeDeps()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/trackctl/config.yaml)")
}

func initConfig() {
	// A .env in the working directory can supply TRACKCTL_* variables.
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "trackctl")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TRACKCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	defaultStateDir := filepath.Join(home, ".config", "trackctl")

	viper.SetDefault("api.base_url", "http://localhost:5000/api")
	viper.SetDefault("state_dir", defaultStateDir)
	viper.SetDefault("cache_path", filepath.Join(defaultStateDir, "cache.db"))
	viper.SetDefault("board.default_project", "")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	var err error
	log, err = logging.New(viper.GetString("state_dir"), verbose)
	if err != nil {
		// Logging to a file is not worth dying for.
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.Warnf("file logging unavailable: %v", err)
	}

	sessions = session.NewStore(viper.GetString("state_dir"))
	client = api.New(viper.GetString("api.base_url"),
		api.WithTokenSource(sessions.Token),
		api.WithLogger(log),
	)
}

func closeDeps() {
	if notifier != nil {
		_ = notifier.Close()
	}
	if cacheDB != nil {
		_ = cacheDB.Close()
	}
}

// getNotifier returns the shared notifier, starting the cross-process
// watcher on first call. Commands that never emit or watch signals skip
// the cost entirely.
func getNotifier() (*notify.Notifier, error) {
	if notifier != nil {
		return notifier, nil
	}
	n, err := notify.New(filepath.Join(viper.GetString("state_dir"), "signals"), log)
	if err != nil {
		return nil, fmt.Errorf("start change signals: %w", err)
	}
	notifier = n
	return notifier, nil
}

// getCache returns the shared fallback cache, opening it on first call.
func getCache() (*cache.Cache, error) {
	if cacheDB != nil {
		return cacheDB, nil
	}
	c, err := cache.Open(viper.GetString("cache_path"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	cacheDB = c
	return cacheDB, nil
}

// requireSession returns the stored session or an actionable error.
func requireSession() (*session.Session, error) {
	sess, err := sessions.Load()
	if errors.Is(err, session.ErrNotLoggedIn) {
		return nil, fmt.Errorf("not logged in (run 'trackctl login' first)")
	}
	return sess, err
}

// finish post-processes a command error. A rejected token tears the
// session down so the next command starts from the login prompt, the
// same way an interactive client would redirect to its login screen.
func finish(err error) error {
	if err == nil {
		return nil
	}
	if api.IsAuth(err) {
		_ = sessions.Clear()
		return fmt.Errorf("session expired, please run 'trackctl login' again")
	}
	return err
}
