package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/loganalyzer/rtlog/pkg/config"
	"github.com/loganalyzer/rtlog/pkg/discovery"
	"github.com/loganalyzer/rtlog/pkg/engine"
	"github.com/loganalyzer/rtlog/pkg/filter"
	"github.com/loganalyzer/rtlog/pkg/logging"
	"github.com/loganalyzer/rtlog/pkg/models"
	"github.com/loganalyzer/rtlog/pkg/state"
	"github.com/loganalyzer/rtlog/pkg/tailer"
	"github.com/loganalyzer/rtlog/pkg/transport"
	"github.com/loganalyzer/rtlog/pkg/ui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	theme      string
	follow     bool
	recursive  bool
	highlight  string
	alerts     []string
	noAlerts   bool
	logFile    string
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rtlog [files or directories...]",
	Short: "rtlog - real-time multi-file log viewer",
	Long: `rtlog tails one or more log files in a terminal UI with filter rules,
search, a context view around the selected line, rolling error and warning
statistics, and an alert banner for lines matching alert patterns.

Examples:
  rtlog /var/log/app.log                     # Read a file to the end
  rtlog -f /var/log/app.log /var/log/db.log  # Follow several files
  rtlog -R -f /var/log/nginx                 # Follow every file under a directory
  rtlog -f '/var/log/**/*.log'               # Follow files matching a glob
  rtlog -r 'timeout|refused' app.log         # Start with a highlight rule
  rtlog --alert PANIC --alert OOM app.log    # Custom alert patterns`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRTLog,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/rtlog/config.yaml)")
	rootCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading files as they grow")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "R", false, "expand directories recursively")
	rootCmd.Flags().StringVarP(&highlight, "regex", "r", "", "initial highlight rule (case-insensitive regex)")
	rootCmd.Flags().StringArrayVar(&alerts, "alert", nil, "alert pattern, repeatable (default: ERROR, FATAL)")
	rootCmd.Flags().BoolVar(&noAlerts, "no-alerts", false, "disable the alert banner")
	rootCmd.Flags().StringVar(&theme, "theme", "", "color theme (dark, light, monochrome)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write diagnostic logs to this file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "debug logging (to the config directory unless --log-file is set)")
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("follow") {
		cfg.Ingest.Follow = follow
	}
	if flags.Changed("recursive") {
		cfg.Ingest.Recursive = recursive
	}
	if flags.Changed("alert") {
		cfg.Alerts.Patterns = alerts
	}
	if noAlerts {
		cfg.Alerts.Disabled = true
	}
	if theme != "" {
		cfg.UI.Theme = theme
	}
	if logFile != "" {
		cfg.General.LogFile = logFile
	}
	if debug {
		cfg.General.LogLevel = "debug"
		if cfg.General.LogFile == "" {
			if dir, err := config.ConfigDir(); err == nil {
				cfg.General.LogFile = filepath.Join(dir, "rtlog.log")
			}
		}
	}
}

// highlightRule builds the startup rule from --regex.
func highlightRule(pattern string) (models.FilterRule, error) {
	rule := models.FilterRule{
		Pattern:         pattern,
		IsRegex:         true,
		CaseInsensitive: true,
		Enabled:         true,
	}
	if _, err := filter.Compile(rule); err != nil {
		return rule, fmt.Errorf("invalid --regex: %w", err)
	}
	return rule, nil
}

// runRTLog is the main execution function
func runRTLog(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(configFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logging.Init(cfg.General.LogLevel, cfg.General.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	var initial *models.FilterRule
	if highlight != "" {
		rule, err := highlightRule(highlight)
		if err != nil {
			return err
		}
		initial = &rule
	}

	files, err := discovery.Resolve(args, cfg.Ingest.Recursive)
	if len(files) == 0 {
		if err != nil {
			return err
		}
		return errors.New("no input files found")
	}
	if err != nil {
		log.WithError(err).Warn("some inputs could not be resolved")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tailer.SetPollInterval(cfg.PollInterval())
	queue := transport.New(cfg.Ingest.QueueCapacity)
	supervisor := tailer.NewSupervisor(queue)

	st := state.New(state.Options{
		AlertPatterns:  cfg.Alerts.Patterns,
		AlertsDisabled: cfg.Alerts.Disabled,
		AlertDisplay:   cfg.AlertDisplay(),
		AlertBlink:     cfg.AlertBlink(),
		StatsWindow:    cfg.Stats.WindowSeconds,
		ContextRadius:  cfg.UI.ContextLines,
	})
	for _, path := range files {
		st.AddSource(path)
		supervisor.Start(ctx, tailer.NewFileSource(path, cfg.Ingest.Follow))
	}
	if initial != nil {
		st.AddFilter(*initial)
	}
	log.WithFields(log.Fields{"sources": len(files), "follow": cfg.Ingest.Follow}).Info("tailing started")

	reloads := make(chan *config.Config, 1)
	if loader.Watch(func(c *config.Config) {
		applyFlags(cmd, c)
		select {
		case <-reloads:
		default:
		}
		reloads <- c
	}) {
		log.WithField("path", loader.ConfigFile()).Info("watching config for changes")
	}

	intents := make(chan models.Intent, 256)
	model := ui.NewModel(ui.Options{
		Keys:     ui.NewKeyMap(cfg.Keybindings),
		Theme:    cfg.UI.Theme,
		PageSize: cfg.UI.PageSize,
		Intents:  intents,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	eng := engine.New(st, queue, ui.NewBridge(program), engine.Options{
		Intents:       intents,
		Reloads:       reloads,
		Tailers:       supervisor,
		FrameInterval: cfg.FrameInterval(),
		IdleSleep:     cfg.IdleSleep(),
		PageSize:      cfg.UI.PageSize,
	})

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- eng.Run(ctx)
		program.Quit()
	}()

	_, runErr := program.Run()

	// Closing the queue makes blocked tailers see the consumer is gone.
	cancel()
	queue.Close()
	if err := <-engineDone; err != nil {
		log.WithError(err).Warn("engine stopped with error")
	}
	if err := supervisor.Wait(); err != nil {
		log.WithError(err).Debug("tailers finished with error")
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}
