package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shutterback/shutterback/internal/config"
	"github.com/shutterback/shutterback/internal/errors"
	"github.com/shutterback/shutterback/internal/logging"
	"github.com/shutterback/shutterback/internal/rsync"
	"github.com/shutterback/shutterback/internal/walker"
	"github.com/shutterback/shutterback/pkg/catalog"
	"github.com/shutterback/shutterback/pkg/executor"
	"github.com/shutterback/shutterback/pkg/planner"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFile string
	dryRun     bool
	extensions []string
	excludes   []string
	logFile    string
	rsyncPath  string
	quiet      bool
	assumeYes  bool
	verbosity  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shutterback [LibraryRoot] [DestinationRoot]",
		Short: "Incremental, deduplicating photo library backup",
		Long: `shutterback backs up a photo/video library to a destination volume,
copying only content not already present anywhere under the destination.
Duplicates are detected by byte size first and SHA-256 fingerprint second,
so nothing already backed up is re-copied and no new content is missed.`,
		Version:       fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(2),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to TOML config file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan only, copy nothing")
	rootCmd.Flags().StringSliceVar(&extensions, "extensions", nil, "Media extension set override (e.g. .jpg,.heic)")
	rootCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Exclude patterns (multiple allowed)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Append log output to this file")
	rootCmd.Flags().StringVar(&rsyncPath, "rsync-path", "", "Path to the rsync binary")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress progress output")
	rootCmd.Flags().BoolVar(&assumeYes, "yes", false, "Proceed without confirmation prompts")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Library.Root = config.ExpandPath(args[0])
	}
	if len(args) > 1 {
		cfg.Backup.Destination = config.ExpandPath(args[1])
	}
	if len(extensions) > 0 {
		cfg.Backup.Extensions = extensions
	}
	if len(excludes) > 0 {
		cfg.Library.Excludes = append(cfg.Library.Excludes, excludes...)
	}
	if logFile != "" {
		cfg.Log.File = config.ExpandPath(logFile)
	}
	if rsyncPath != "" {
		cfg.Backup.RsyncPath = rsyncPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	noColor := !isatty.IsTerminal(os.Stderr.Fd())
	logging.Setup(effectiveVerbosity(cfg.Log.Level), cfg.Log.File, noColor)
	logger := logging.GetLogger("run")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := checkDestination(cfg.Backup.Destination); err != nil {
		return err
	}

	sourceRoot := walker.DiscoverOriginals(cfg.Library.Root)
	if sourceRoot != cfg.Library.Root {
		logger.Info().Str("originals", sourceRoot).Msg("found originals folder in library package")
	}

	cat, err := catalog.Build(cfg.Backup.Destination, cfg.Backup.Extensions, cfg.Library.Excludes)
	if err != nil {
		if cat == nil || !errors.HasCode(err, errors.ErrCatalogScan) {
			return err
		}
		logger.Warn().Err(err).Msg("destination scan incomplete; a degraded run may copy files that already exist")
		if !confirmDegraded() {
			return err
		}
		logger.Warn().Msg("proceeding with partial catalog")
	}
	logger.Info().Int("files", cat.Len()).Msg("destination catalog ready")

	w, err := walker.New(sourceRoot, cfg.Backup.Extensions, cfg.Library.Excludes)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}

	plnr := planner.New(w, cat, cfg.Backup.Destination)

	if dryRun {
		return runDry(plnr)
	}

	total, err := w.Count()
	if err != nil {
		logger.Warn().Err(err).Msg("could not pre-count library files, progress total unavailable")
	}

	var opts []executor.Option
	var bar *pterm.ProgressbarPrinter
	if !quiet && total > 0 {
		bar, _ = pterm.DefaultProgressbar.WithTotal(total).WithTitle("Backing up").Start()
		opts = append(opts, executor.WithProgress(func(done int, task planner.Task) {
			bar.UpdateTitle(task.RelPath)
			bar.Increment()
		}))
	}

	runner := rsync.New(
		rsync.WithBinary(cfg.Backup.RsyncPath),
		rsync.WithExtraArgs(cfg.Backup.RsyncArgs),
	)
	report := executor.New(runner, opts...).Execute(ctx, plnr.Tasks())

	if bar != nil {
		_, _ = bar.Stop()
	}

	report.WriteSummary(os.Stdout)
	logger.Info().
		Int("scanned", report.Scanned).
		Int("copied", report.Copied).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("elapsed", report.Elapsed).
		Msg("run complete")

	if !report.OK() {
		return fmt.Errorf("%d tasks failed", report.Failed)
	}
	if report.Interrupted() {
		return fmt.Errorf("run interrupted")
	}
	return nil
}

// runDry enumerates the plan without invoking the executor.
func runDry(plnr *planner.Planner) error {
	var copies, skips, changed, failures int
	for task := range plnr.Tasks() {
		switch task.Disposition {
		case planner.DispositionCopy:
			copies++
			fmt.Printf("copy: %s (%s)\n", task.RelPath, task.Reason)
		case planner.DispositionSkipDuplicate:
			skips++
			fmt.Printf("skip: %s (%s)\n", task.RelPath, task.Reason)
		case planner.DispositionSkipChangedPolicy:
			changed++
			fmt.Printf("keep existing: %s (%s)\n", task.RelPath, task.Reason)
		case planner.DispositionFailed:
			failures++
			fmt.Printf("failed: %s (%v)\n", task.SourcePath, task.Err)
		}
	}
	fmt.Printf("\nWould copy %d files, skip %d duplicates, keep %d changed, %d unresolvable\n",
		copies, skips, changed, failures)
	if failures > 0 {
		return fmt.Errorf("%d files could not be resolved", failures)
	}
	return nil
}

// checkDestination verifies the destination volume is mounted and writable.
func checkDestination(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrap(err, errors.ErrDestinationUnavailable, "destination %s is not mounted", root)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrDestinationUnavailable, "destination %s is not a directory", root)
	}

	probe, err := os.CreateTemp(root, ".shutterback-probe-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrDestinationUnavailable, "destination %s is not writable", root)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// confirmDegraded asks the user whether to continue with a partial catalog.
// Non-interactive runs must opt in with --yes.
func confirmDegraded() bool {
	if assumeYes {
		return true
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	fmt.Fprint(os.Stderr, "Destination scan incomplete. Continue in degraded mode? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func effectiveVerbosity(level string) int {
	if verbosity > 0 {
		return verbosity
	}
	switch strings.ToLower(level) {
	case "warn", "warning", "error":
		return 0
	case "debug":
		return 2
	case "trace":
		return 3
	default:
		return 1
	}
}
