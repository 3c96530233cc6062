package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/custody/pkg/adapters/fs"
	lcsource "github.com/aretw0/custody/pkg/adapters/lifecycle"
	"github.com/aretw0/custody/pkg/core"
	"github.com/aretw0/custody/pkg/scenario"
)

var (
	runJSON   bool
	runYAML   bool
	runWatch  bool
	runFollow bool
	runOut    string
	runFormat string
)

var runCmd = &cobra.Command{
	Use:   "run <scenario|glob>...",
	Short: "Run scenario files against a fresh service",
	Long: `Run executes each scenario against its own fresh service and prints the
step results and the resulting timeline. Patterns may use ** to match
nested directories, e.g. "scenarios/**/*.yaml".`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if runJSON && runYAML {
			fatal("Invalid flags", fmt.Errorf("--json and --yaml are mutually exclusive"))
		}

		files, err := scenario.Expand(args...)
		if err != nil {
			fatal("Failed to expand scenarios", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ok := true
		for _, file := range files {
			passed, err := runFile(ctx, file, os.Stdout)
			if err != nil {
				fatal("Failed to run "+file, err)
			}
			ok = ok && passed
		}

		if runWatch {
			if err := watchAndRerun(ctx, args, os.Stdout); err != nil {
				fatal("Watch failed", err)
			}
			return
		}
		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output in JSON format")
	runCmd.Flags().BoolVar(&runYAML, "yaml", false, "Output in YAML format")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Re-run scenarios when their files change")
	runCmd.Flags().BoolVarP(&runFollow, "follow", "f", false, "Print timeline events as they happen")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Also write each report to this directory")
	runCmd.Flags().StringVar(&runFormat, "format", "json", "Report file format for --out: json or yaml")
}

type runOutput struct {
	Report   scenario.Report      `json:"report" yaml:"report"`
	Timeline []core.TimelineEvent `json:"timeline" yaml:"timeline"`
}

// runFile runs one scenario file and reports whether every step met its
// expectation.
func runFile(ctx context.Context, path string, out io.Writer) (bool, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return false, err
	}
	svc, err := newService()
	if err != nil {
		return false, err
	}

	var following sync.WaitGroup
	followCtx, stopFollow := context.WithCancel(ctx)
	if runFollow {
		if err := follow(followCtx, svc, out, &following); err != nil {
			stopFollow()
			return false, err
		}
	}

	rep, err := scenario.NewRunner(svc, slog.Default()).Run(ctx, sc)
	stopFollow()
	following.Wait()
	if err != nil {
		return false, err
	}

	result := runOutput{Report: rep, Timeline: svc.ListTimeline()}
	if runOut != "" {
		exporter, err := fs.NewExporter(runOut)
		if err != nil {
			return false, err
		}
		written, err := exporter.Export(path, runFormat, result)
		if err != nil {
			return false, err
		}
		slog.Info("report written", "path", written)
	}

	switch {
	case runJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(result)
	case runYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		err = enc.Encode(result)
		if err == nil {
			err = enc.Close()
		}
	default:
		printReport(out, result)
	}
	return rep.OK(), err
}

// follow streams timeline events to out until ctx ends.
func follow(ctx context.Context, svc *core.Service, out io.Writer, wg *sync.WaitGroup) error {
	src := lcsource.NewSource(svc)
	if err := src.Start(ctx); err != nil {
		return err
	}
	wg.Add(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer wg.Done()
		for ev := range src.Events() {
			fmt.Fprintf(out, "» %s\n", ev)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		slog.Error("follow failed", "error", err)
	}))
	return nil
}

func printReport(out io.Writer, result runOutput) {
	rep := result.Report
	fmt.Fprintf(out, "== %s\n", rep.Name)
	for _, r := range rep.Results {
		mark := "ok  "
		if !r.OK {
			mark = "FAIL"
		}
		line := fmt.Sprintf("%s %2d %-20s", mark, r.Index, r.Op)
		if r.ID != "" {
			line += " id=" + r.ID
		}
		if r.Error != "" {
			line += " error=" + r.Error
		}
		fmt.Fprintln(out, line)
		if r.View != nil {
			printView(out, *r.View)
		}
	}
	fmt.Fprintf(out, "-- timeline (%d)\n", len(result.Timeline))
	for _, ev := range result.Timeline {
		fmt.Fprintf(out, "   %s  %s\n", ev.Timestamp.Format(time.RFC3339), ev)
	}
	fmt.Fprintf(out, "== %d passed, %d failed\n", rep.Passed, rep.Failed)
}

func printView(out io.Writer, v core.RecordView) {
	if !v.Loaded {
		fmt.Fprintf(out, "        [%s] nothing loaded\n", v.Role)
		return
	}
	state := "clear"
	if v.Obscured {
		state = "obscured"
	}
	fmt.Fprintf(out, "        [%s, %s] %s: %s\n", v.Role, state, v.Record.Title, v.Record.Description)
	for _, f := range v.Record.Metadata {
		fmt.Fprintf(out, "          %s = %s\n", f.Key, f.Value)
	}
}

// watchAndRerun supervises a scenario watcher and re-runs every changed file
// until ctx ends.
func watchAndRerun(ctx context.Context, patterns []string, out io.Writer) error {
	changes := make(chan string, 16)
	spec := supervisor.Spec{
		Name: "scenario-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return scenario.NewWatcher(patterns, changes, slog.Default()), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			ResetDuration:   30 * time.Second,
			MaxRestarts:     5,
			MaxDuration:     time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("custody-watch", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = sup.Stop(stopCtx)
	}()

	fmt.Fprintln(os.Stderr, "watching for scenario changes, Ctrl+C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changes:
			slog.Debug("scenario changed", "path", path)
			if _, err := runFile(ctx, path, out); err != nil {
				slog.Error("scenario failed", "path", path, "error", err)
			}
		}
	}
}
