package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryaman2603/os-clock-simulator/driver"
	"github.com/aryaman2603/os-clock-simulator/sim"
)

var (
	runFrames  int
	runRefs    string
	runRecord  bool
	runOutput  string
	runSummary bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation to completion in the terminal",
	Long: `Run walks the whole reference stream, printing one line per ` +
		`micro-step, and reports the hit/fault statistics at the end.`,
	Run: func(cmd *cobra.Command, _ []string) {
		runSimulation(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFrames, "frames", 3,
		"number of physical frames")
	runCmd.Flags().StringVar(&runRefs, "refs", "1 2 3 4 1 2 5",
		"page reference string, tokens separated by spaces or commas")
	runCmd.Flags().BoolVar(&runRecord, "record", false,
		"record every micro-step into a SQLite trace database")
	runCmd.Flags().StringVar(&runOutput, "output", "",
		"trace database file name (implies --record, "+
			"default from CLOCKSIM_DB)")
	runCmd.Flags().BoolVar(&runSummary, "summary", false,
		"print a per-micro-state step count summary")
}

func runSimulation(cmd *cobra.Command) {
	if !cmd.Flags().Changed("output") {
		runOutput = envStringDefault("CLOCKSIM_DB", runOutput)
	}

	refs, err := sim.ParseReferenceString(runRefs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := sim.ValidateFrameCount(runFrames); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	b := driver.MakeBuilder().
		WithFrameCount(runFrames).
		WithRefString(refs).
		WithLogger(log.New(os.Stdout, "", 0)).
		WithStepInterval(time.Millisecond).
		WithStepCounter()

	if runRecord || runOutput != "" {
		b = b.WithRecording()
		if runOutput != "" {
			b = b.WithOutputFileName(runOutput)
		}
	}

	d := b.Build()
	defer d.Terminate()

	total := d.RunToCompletion()
	stats := d.Stats()

	fmt.Printf("\nReferences: %d, micro-steps: %d\n",
		stats.References, total)
	fmt.Printf("Hits: %d, faults: %d, hit ratio: %.2f\n",
		stats.Hits, stats.Faults, stats.HitRatio)

	if runSummary {
		printStepSummary(d)
	}
}

var summaryStates = []string{
	"Start",
	"CheckHit",
	"Hit",
	"FaultStartSearch",
	"FaultCheckBit",
	"FaultSetBitZero",
	"FaultReplace",
	"Done",
}

func printStepSummary(d *driver.Driver) {
	counter := d.StepCounter()

	fmt.Printf("\nMicro-steps by resulting state:\n")
	for _, name := range summaryStates {
		if count := counter.StepCount(name); count > 0 {
			fmt.Printf("  %-18s %d\n", name, count)
		}
	}
}
