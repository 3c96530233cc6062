package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/custody/pkg/core"
	"github.com/aretw0/custody/pkg/scenario"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Drive a service interactively, one step per line",
	Long: `Each line is a step: op key=value ... (quotes allowed, meta.k=v sets metadata).

  connect name=Alice
  create_record title="Doc A" description=d meta.zone=R1
  create_collaborator name=Sys1 as=sys1
  request_permission entity=sys1 kind=read as=r1
  resolve_request request=r1 granted=true

Inspection commands: entities, requests, owners, timeline, record, state, aliases, help, quit.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newService()
		if err != nil {
			fatal("Failed to initialize custody", err)
		}
		if err := repl(svc, os.Stdin, os.Stdout); err != nil {
			fatal("REPL failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func repl(svc *core.Service, in io.Reader, out io.Writer) error {
	runner := scenario.NewRunner(svc, slog.Default())
	scanner := bufio.NewScanner(in)
	prompt := func() { fmt.Fprint(out, "custody> ") }

	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if inspect(svc, runner, line, out) {
			prompt()
			continue
		}

		step, err := scenario.ParseLine(line)
		switch {
		case errors.Is(err, scenario.ErrEmptyLine):
		case err != nil:
			fmt.Fprintf(out, "error: %v\n", err)
		default:
			res, err := runner.Exec(step)
			if err != nil {
				return err
			}
			printStep(out, res)
		}
		prompt()
	}
	return scanner.Err()
}

func printStep(out io.Writer, r scenario.StepResult) {
	switch {
	case r.Rejected:
		fmt.Fprintf(out, "rejected: %s\n", r.Error)
	case r.ID != "":
		fmt.Fprintf(out, "ok %s\n", r.ID)
	default:
		fmt.Fprintln(out, "ok")
	}
	if r.View != nil {
		printView(out, *r.View)
	}
}

// inspect handles the read-only commands. It reports whether line was one.
func inspect(svc *core.Service, runner *scenario.Runner, line string, out io.Writer) bool {
	var v any
	switch line {
	case "help":
		fmt.Fprintln(out, "ops:", strings.Join(scenario.Ops, ", "))
		fmt.Fprintln(out, "inspect: entities, requests, owners, timeline, record, state, aliases, quit")
		return true
	case "entities":
		v = svc.ListEntities()
	case "requests":
		v = svc.PendingRequests()
	case "owners":
		v = svc.PotentialOwners()
	case "timeline":
		for _, ev := range svc.ListTimeline() {
			fmt.Fprintf(out, "%4d %s\n", ev.Seq, ev)
		}
		return true
	case "record":
		rec, ok := svc.GetRecord()
		if !ok {
			fmt.Fprintln(out, "no record")
			return true
		}
		v = rec
	case "state":
		v = svc.State()
	case "aliases":
		v = runner.Aliases()
	default:
		return false
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	_ = enc.Close()
	return true
}
