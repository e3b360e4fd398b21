package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"volition/internal/config"
	"volition/internal/curve"
	"volition/internal/scheduler"
	"volition/internal/storage"
	volapi "volition/pkg/volition"
)

const defaultDBPath = "volition.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "validate":
		return runValidate(ctx, args[1:])
	case "run":
		return runScenario(ctx, args[1:])
	case "curves":
		return runCurves(ctx, args[1:])
	case "graphs":
		return runGraphs(ctx, args[1:])
	case "journal":
		return runJournal(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := volapi.New(volapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}
	resetter, ok := store.(storage.Resetter)
	if !ok {
		return fmt.Errorf("store backend %s does not support reset", *storeKind)
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runValidate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	graphPath := fs.String("graph", "", "graph definition file (yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *graphPath == "" {
		return usageError("validate: -graph is required")
	}

	g, spec, err := config.LoadGraph(*graphPath)
	if err != nil {
		return err
	}

	fmt.Printf("graph %s: ok\n", g.Name())
	fmt.Printf("  considerations: %d\n", len(spec.Considerations))
	fmt.Printf("  aggregators:    %d\n", len(spec.Aggregators))
	fmt.Printf("  actions:        %d\n", len(g.Actions()))
	for _, id := range g.Actions() {
		n := g.At(id)
		fmt.Printf("    %s (threshold=%s priority=%d)\n", n.Action, humanize.Ftoa(n.Threshold), n.Priority)
	}
	return nil
}

func runScenario(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	graphPath := fs.String("graph", "", "graph definition file (yaml)")
	scenarioPath := fs.String("scenario", "", "scenario file (yaml)")
	workers := fs.Int("workers", 4, "parallel agent evaluations per tick")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	verbose := fs.Bool("v", false, "print per-node scores for each agent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *graphPath == "" || *scenarioPath == "" {
		return usageError("run: -graph and -scenario are required")
	}

	spec, err := config.LoadGraphSpec(*graphPath)
	if err != nil {
		return err
	}
	scenario, err := config.LoadScenario(*scenarioPath)
	if err != nil {
		return err
	}

	client, err := volapi.New(volapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
		Workers:   *workers,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	g, err := client.InstallSpec(ctx, spec)
	if err != nil {
		return err
	}

	decisions := 0
	for tick := 0; tick < scenario.Ticks; tick++ {
		snaps := scenario.Snapshots(tick)
		agents := make([]scheduler.AgentInput, 0, len(scenario.Agents))
		for _, agent := range scenario.Agents {
			agents = append(agents, scheduler.AgentInput{ID: agent.ID, Snapshot: snaps[agent.ID]})
		}

		result, err := client.Tick(ctx, g.Name(), agents)
		if err != nil {
			return err
		}

		fmt.Printf("tick %d (%s)\n", tick, result.TickID)
		for _, res := range result.Results {
			if res.Err != nil {
				fmt.Printf("  %s: error: %v\n", res.AgentID, res.Err)
				continue
			}
			if res.Selection.Ok {
				decisions++
				fmt.Printf("  %s: %s (score=%s)\n", res.AgentID, res.Selection.Chosen, humanize.Ftoa(res.Selection.Score))
			} else {
				fmt.Printf("  %s: no eligible action\n", res.AgentID)
			}
			if len(res.Degradations) > 0 {
				for _, d := range res.Degradations {
					fmt.Printf("    degraded: %s (input %s unavailable)\n", d.Name, d.Input)
				}
			}
			if *verbose {
				for _, s := range res.Scores {
					fmt.Printf("    %s = %s\n", s.Name, humanize.Ftoa(s.Score))
				}
			}
		}
	}

	fmt.Printf("run %s: %s ticks, %s agents, %s decisions\n",
		client.RunID(),
		humanize.Comma(int64(scenario.Ticks)),
		humanize.Comma(int64(len(scenario.Agents))),
		humanize.Comma(int64(decisions)))
	return nil
}

func runCurves(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("curves", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, name := range curve.List() {
		fmt.Println(name)
	}
	return nil
}

func runGraphs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("graphs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}
	specs, err := store.ListGraphSpecs(ctx)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		fmt.Println("no graphs stored")
		return nil
	}
	for _, spec := range specs {
		fmt.Printf("%s\t%s\t%d considerations\t%d aggregators\n",
			spec.ID, spec.Name, len(spec.Considerations), len(spec.Aggregators))
	}
	return nil
}

func runJournal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	runID := fs.String("run", "", "run id to inspect")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("journal: -run is required")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	if err := store.Init(ctx); err != nil {
		return err
	}
	records, found, err := store.GetDecisions(ctx, *runID)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("no decisions recorded for run %s\n", *runID)
		return nil
	}
	for _, r := range records {
		action := r.Action
		if !r.Chosen {
			action = "(none)"
		}
		fmt.Printf("seq=%d agent=%s action=%s score=%s degraded=%d\n",
			r.Seq, r.AgentID, action, humanize.Ftoa(r.Score), r.Degraded)
	}
	fmt.Printf("%s decisions\n", humanize.Comma(int64(len(records))))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: volitionctl <init|reset|validate|run|curves|graphs|journal> [flags]", msg)
}
