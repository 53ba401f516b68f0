package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodesweep/deleter"
	"nodesweep/scanner"
	"nodesweep/tui"
)

var (
	followSymlinks bool
	maxDepth       int
	skipConfirm    bool
	jsonOutput     bool
)

var rootCmd = &cobra.Command{
	Use:   "nodesweep [path]",
	Short: "Find node_modules directories, show what they cost, sweep them away",
	Long: `nodesweep walks a directory tree looking for node_modules directories,
measures how much disk each one occupies and, after confirmation, removes
them. Matched directories are reported but never traversed into; .git and
.cache are skipped entirely.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&followSymlinks, "follow-symlinks", "L", false,
		"follow symbolic links (with cycle detection)")
	rootCmd.Flags().IntVarP(&maxDepth, "max-depth", "d", -1,
		"maximum traversal depth, -1 for unbounded (0 scans only the root's direct contents)")
	rootCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false,
		"delete without asking for confirmation")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false,
		"machine-readable output: no progress display, JSON report on stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger writes diagnostics to a temp file; the terminal belongs to the
// progress display.
func newLogger() (*zap.Logger, string, error) {
	f, err := os.CreateTemp(os.TempDir(), "nodesweep-*.log")
	if err != nil {
		return nil, "", err
	}
	name := f.Name()
	f.Close()

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{name}
	cfg.ErrorOutputPaths = []string{name}
	logger, err := cfg.Build()
	if err != nil {
		return nil, "", err
	}
	return logger, name, nil
}

func run(cmd *cobra.Command, args []string) error {
	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}

	absPath, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", rootDir, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("path does not exist: %s", absPath)
	}

	logger, logPath, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logger.Sync()

	if !jsonOutput {
		fmt.Println("Log file:", logPath)
	}

	s := scanner.NewScanner(absPath, scanner.Options{
		FollowSymlinks: followSymlinks,
		MaxDepth:       maxDepth,
		Logger:         logger,
	})

	var items []*scanner.NodeModuleInfo
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for info := range s.Results() {
			items = append(items, info)
		}
	}()

	s.Start()
	if jsonOutput {
		for range s.Progress() {
		}
	} else if err := tui.ShowScanProgress(s); err != nil {
		logger.Warn("progress display failed", zap.Error(err))
		for range s.Progress() {
		}
	}
	<-s.Done()
	<-collected

	if err := s.Err(); err != nil {
		return err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Size > items[j].Size })

	if jsonOutput {
		return runJSON(absPath, s, items, logger)
	}
	return runInteractive(absPath, s, items, logger)
}

func runInteractive(root string, s *scanner.Scanner, items []*scanner.NodeModuleInfo, logger *zap.Logger) error {
	elapsed := s.ElapsedTime().Round(10 * time.Millisecond)

	if len(items) == 0 {
		fmt.Printf("No node_modules found under %s (scanned %s directories in %s).\n",
			tui.CollapseHome(root), humanize.Comma(s.DirCount()), elapsed)
		return nil
	}

	fmt.Print(tui.RenderTable(items, s.TotalBytes()))
	fmt.Printf("scanned %s directories in %s\n\n",
		humanize.Comma(s.DirCount()), elapsed)

	question := fmt.Sprintf("Delete %d node_modules (%s)?",
		len(items), humanize.Bytes(uint64(s.TotalBytes())))
	if !skipConfirm && !tui.Confirm(os.Stdin, os.Stdout, question) {
		fmt.Println("Nothing deleted.")
		return nil
	}

	sum, freed := deleteAll(items, logger, tui.DeletionPrinter(os.Stdout, len(items)))
	tui.PrintDeletionSummary(os.Stdout, sum, freed)
	// Per-item failures were already reported inline; the run itself still
	// counts as completed.
	return nil
}

func runJSON(root string, s *scanner.Scanner, items []*scanner.NodeModuleInfo, logger *zap.Logger) error {
	report := tui.NewReport(root, items, s.TotalBytes(), s.ElapsedTime())

	// Without a terminal there is nobody to ask, so deletion only happens
	// under --yes.
	if skipConfirm && len(items) > 0 {
		sum, _ := deleteAll(items, logger, nil)
		report.AttachDeletion(sum)
	}

	return report.Write(os.Stdout)
}

func deleteAll(items []*scanner.NodeModuleInfo, logger *zap.Logger, onComplete func(string, int, error)) (deleter.Summary, int64) {
	paths := make([]string, len(items))
	sizeByPath := make(map[string]int64, len(items))
	for i, item := range items {
		paths[i] = item.Path
		sizeByPath[item.Path] = item.Size
	}

	d := deleter.New()
	d.Log = logger
	d.OnComplete = onComplete
	sum := d.RemoveAll(paths)

	var freed int64
	failed := make(map[string]struct{}, len(sum.Failures))
	for _, f := range sum.Failures {
		failed[f.Path] = struct{}{}
	}
	for path, size := range sizeByPath {
		if _, ok := failed[path]; !ok {
			freed += size
		}
	}
	return sum, freed
}
