package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "clocksim",
	Short: "clocksim steps through the Clock (Second-Chance) " +
		"page-replacement algorithm.",
	Long: `clocksim simulates the Clock (Second-Chance) page-replacement ` +
		`algorithm one observable micro-step at a time. Use "run" for a ` +
		`headless batch simulation or "serve" to open the interactive ` +
		`visualizer in a browser.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file can provide defaults such as CLOCKSIM_PORT.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// envIntDefault reads an integer from the environment, falling back to def
// when the variable is unset or malformed.
func envIntDefault(name string, def int) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}

	return n
}

// envStringDefault reads a string from the environment, falling back to def
// when the variable is unset.
func envStringDefault(name string, def string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return def
	}

	return value
}
