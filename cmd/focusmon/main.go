// Package main is the CLI entry point for focusmon.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/focus_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
	"github.com/eliteGoblin/focusd/focus_mon/internal/extract"
	"github.com/eliteGoblin/focusd/focus_mon/internal/infra"
	"github.com/eliteGoblin/focusd/focus_mon/internal/policy"
	"github.com/eliteGoblin/focusd/focus_mon/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "focusmon",
	Short: "Foreground monitor - interrupts distracting apps and sites",
	Long: `focusmon watches which application is in the foreground and, for browsers,
which address is displayed. Blocked apps and short-form video sites are
dismissed and replaced with an interruption screen.

Notifications arrive as JSON lines on stdin or on a unix socket; a polling
backstop asks the window manager for the active app.`,
	Version:      Version,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitors until interrupted",
	Long: `Runs the event monitor, the polling backstop and the screen-time reporter.
Tunables are read from FOCUSMON_* environment variables.`,
	RunE: runMonitor,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the compiled-in policy",
	RunE:  runList,
}

var checkCmd = &cobra.Command{
	Use:   "check <app-id> [address]",
	Short: "Classify an app (and optional address) against the policy",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCheck,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent blocks from the journal",
	RunE:  runHistory,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running monitor (requires FOCUSMON_METRICS_ADDR)",
	RunE:  runStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	debugLogging bool
	noPolling    bool
	listenSocket bool
	historyLimit int
	jsonOutput   bool
)

func init() {
	runCmd.Flags().BoolVar(&debugLogging, "debug", false, "Log to stderr at debug level")
	runCmd.Flags().BoolVar(&noPolling, "no-poll", false, "Disable the polling backstop")
	runCmd.Flags().BoolVar(&listenSocket, "listen", false, "Read notifications from the default unix socket instead of stdin")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of records to show")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	paths := infra.DetectPaths()

	logger := createLogger(paths.LogPath, cfg.LogLevel, debugLogging)
	defer func() { _ = logger.Sync() }()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	var source domain.NotificationSource
	if socketPath := feedSocketPath(cfg, paths, listenSocket); socketPath != "" {
		source = infra.NewSocketSource(socketPath, logger.Named("feed"))
	} else {
		source = infra.NewStreamSource(os.Stdin, logger.Named("feed"))
	}

	presenter := infra.NewCommandPresenter(infra.PresenterCommands{
		Back:    cfg.BackCommand,
		Present: cfg.PresentCommand,
		Notify:  cfg.NotifyCommand,
	}, logger.Named("presenter"))

	metrics := infra.NewMetrics()
	deps := daemon.Dependencies{
		Source:    source,
		Presenter: presenter,
		Metrics:   metrics,
	}

	// The journal is best effort: monitoring runs without it.
	journal, err := infra.OpenJournal(paths.DataDir, nil)
	if err != nil {
		logger.Warn("block journal unavailable", zap.Error(err))
	} else {
		defer journal.Close()
		deps.Journal = journal
	}

	if !noPolling {
		deps.Query = infra.NewWindowForegroundQuery(logger.Named("foreground"))
	}

	supervisor := daemon.New(cfg, deps, logger)

	if cfg.MetricsAddr != "" {
		srv := newStatusServer(cfg.MetricsAddr, metrics, supervisor.Handle())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics and status", zap.String("addr", cfg.MetricsAddr))
	}

	logger.Info("focusmon starting",
		zap.String("version", Version),
		zap.String("mode", string(paths.Mode)),
		zap.Duration("cooldown", cfg.Cooldown),
		zap.Bool("polling", deps.Query != nil))

	return supervisor.Run(ctx)
}

// feedSocketPath returns the socket to listen on, or "" for stdin.
// FOCUSMON_SOCKET wins over the per-mode default picked by --listen.
func feedSocketPath(cfg daemon.Config, paths infra.RuntimePaths, listen bool) string {
	if cfg.Socket != "" {
		return cfg.Socket
	}
	if listen {
		return paths.SocketPath
	}
	return ""
}

func newStatusServer(addr string, metrics *infra.Metrics, handle *daemon.Handle) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/status", daemon.StatusHandler(handle))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	registry := policy.NewRegistry()
	set := registry.Set()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "\n=== Blocked Applications ===")
	for _, p := range registry.GetAll() {
		fmt.Fprintf(out, "\n[%s] %s\n", p.ID(), p.Name())
		fmt.Fprintln(out, "  Apps:")
		for _, app := range p.Apps() {
			fmt.Fprintf(out, "    - %s\n", app)
		}
		if patterns := p.AddressPatterns(); len(patterns) > 0 {
			fmt.Fprintln(out, "  Addresses:")
			for _, pattern := range patterns {
				fmt.Fprintf(out, "    - %s\n", pattern)
			}
		}
	}

	printList(out, "Browsers", set.Browsers())
	printList(out, "Always allowed", set.AlwaysAllowed())

	if conflicts := set.Conflicts(); len(conflicts) > 0 {
		fmt.Fprintln(out, "\nAlways allowed wins over blocked for:")
		for _, id := range conflicts {
			fmt.Fprintf(out, "    - %s\n", id)
		}
	}

	fmt.Fprintln(out, "\n============================")
	return nil
}

func printList(out io.Writer, title string, items []string) {
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "    - %s\n", item)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	appID := args[0]
	out := cmd.OutOrStdout()

	set := policy.NewDefaultSet()
	classifier := usecase.NewClassifier(set, extract.New(zap.NewNop()))

	fc := domain.ForegroundContext{AppID: appID}
	if len(args) == 2 {
		fc.Root = syntheticSnapshot(appID, args[1])
	}

	decision, blocked := classifier.Classify(domain.KindForegroundChanged, fc)
	if !blocked {
		reason := "no rule matched"
		if set.IsAlwaysAllowed(appID) {
			reason = "always allowed"
		}
		fmt.Fprintf(out, "allow  %s (%s)\n", appID, reason)
		return nil
	}

	fmt.Fprintf(out, "block  %s\n", appID)
	fmt.Fprintf(out, "  category: %s\n", decision.Category)
	fmt.Fprintf(out, "  target:   %s\n", decision.Target)
	if decision.Address != "" {
		fmt.Fprintf(out, "  address:  %s\n", decision.Address)
	}
	if group, err := policy.NewRegistry().GroupOf(appID); err == nil {
		fmt.Fprintf(out, "  group:    %s\n", group.Name())
	}
	return nil
}

// syntheticSnapshot builds a one-field browser window showing address in
// the first URL bar the extractor would probe for appID.
func syntheticSnapshot(appID, address string) domain.UINode {
	viewID := appID + ":id/url_bar"
	if candidates := extract.NewHintTable().Candidates(appID); len(candidates) > 0 {
		viewID = candidates[0]
	}
	return infra.NewJSONNode(&infra.NodeJSON{
		ViewID: appID + ":id/content",
		Children: []*infra.NodeJSON{
			{ViewID: viewID, Text: address},
		},
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	paths := infra.DetectPaths()
	out := cmd.OutOrStdout()

	journal, err := infra.OpenJournal(paths.DataDir, nil)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	records, err := journal.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	y, m, d := time.Now().Date()
	counts, err := journal.CountSince(time.Date(y, m, d, 0, 0, 0, 0, time.Local))
	if err != nil {
		return fmt.Errorf("failed to count today's blocks: %w", err)
	}

	fmt.Fprintln(out, "\n=== Blocks Today ===")
	for _, c := range []domain.BlockCategory{domain.CategoryApp, domain.CategoryURL, domain.CategoryShortVideo} {
		fmt.Fprintf(out, "  %-7s %d\n", c, counts[c])
	}

	fmt.Fprintln(out, "\n=== Recent Blocks ===")
	if len(records) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, r := range records {
		detail := r.AppID
		if r.Address != "" {
			detail = r.AppID + " " + r.Address
		}
		fmt.Fprintf(out, "  %s  %-7s %-24s %s\n",
			r.BlockedAt.Local().Format("2006-01-02 15:04:05"), r.Category, r.Target, detail)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.MetricsAddr == "" {
		return errors.New("FOCUSMON_METRICS_ADDR is not set; the running monitor exposes no status endpoint")
	}

	addr := cfg.MetricsAddr
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://" + addr + "/status")
	if err != nil {
		return fmt.Errorf("focusmon is not reachable at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	var status daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("invalid status response: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running:     %t\n", status.Running)
	fmt.Fprintf(out, "Blocked:     %d\n", status.Accepted)
	fmt.Fprintf(out, "Suppressed:  %d\n", status.Suppressed)
	if status.ScreenTimeToday != "" {
		fmt.Fprintf(out, "Screen time: %s\n", status.ScreenTimeToday)
	}
	if lb := status.LastBlock; lb != nil {
		fmt.Fprintf(out, "Last block:  %s %s (%s) at %s\n",
			lb.Category, lb.Target, lb.App, lb.BlockedAt.Local().Format(time.Kitchen))
	}
	return nil
}

func createLogger(logPath, level string, debug bool) *zap.Logger {
	if debug {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err == nil {
		config.OutputPaths = []string{logPath}
	}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("focusmon %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
