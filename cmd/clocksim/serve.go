package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/aryaman2603/os-clock-simulator/driver"
	"github.com/aryaman2603/os-clock-simulator/monitoring"
	"github.com/aryaman2603/os-clock-simulator/sim"
)

var (
	servePort       int
	serveFrames     int
	serveRefs       string
	serveIntervalMS int
	serveOpen       bool
	serveRecord     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive visualizer",
	Long: `Serve starts a web server hosting the step-by-step visualizer. ` +
		`The simulation is controlled from the browser: step forward, step ` +
		`back, or play automatically.`,
	Run: func(cmd *cobra.Command, _ []string) {
		serveSimulation(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"port for the web server (0 picks a random port, "+
			"default from CLOCKSIM_PORT)")
	serveCmd.Flags().IntVar(&serveFrames, "frames", 3,
		"number of physical frames")
	serveCmd.Flags().StringVar(&serveRefs, "refs", "1 2 3 4 1 2 5",
		"page reference string, tokens separated by spaces or commas")
	serveCmd.Flags().IntVar(&serveIntervalMS, "interval-ms", 700,
		"automatic play interval in milliseconds "+
			"(default from CLOCKSIM_INTERVAL_MS)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", true,
		"open the visualizer in a browser")
	serveCmd.Flags().BoolVar(&serveRecord, "record", false,
		"record every micro-step into a SQLite trace database")
}

func serveSimulation(cmd *cobra.Command) {
	if !cmd.Flags().Changed("port") {
		servePort = envIntDefault("CLOCKSIM_PORT", servePort)
	}

	if !cmd.Flags().Changed("interval-ms") {
		serveIntervalMS = envIntDefault(
			"CLOCKSIM_INTERVAL_MS", serveIntervalMS)
	}

	refs, err := sim.ParseReferenceString(serveRefs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := sim.ValidateFrameCount(serveFrames); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if serveIntervalMS < 1 {
		fmt.Fprintf(os.Stderr,
			"Error: interval must be at least 1 ms, got %d\n",
			serveIntervalMS)
		os.Exit(1)
	}

	b := driver.MakeBuilder().
		WithFrameCount(serveFrames).
		WithRefString(refs).
		WithStepInterval(time.Duration(serveIntervalMS) * time.Millisecond)

	if serveRecord {
		b = b.WithRecording()
	}

	d := b.Build()
	defer d.Terminate()

	m := monitoring.NewMonitor()
	if servePort > 0 {
		m.WithPortNumber(servePort)
	}
	m.RegisterDriver(d)

	url := m.StartServer()

	if serveOpen {
		_ = browser.OpenURL(url)
	}

	select {}
}
