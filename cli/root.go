package cli

import (
	"fmt"
	"os"

	"github.com/booknest/booknest/cli/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "booknest",
	Short: "BookNest command line client",
	Long:  `Manage your BookNest catalog, reading history, and recommendations from the terminal.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local configuration",
	Long:  `Create ~/.booknest and write a default config.yaml pointing at a local server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			printError(fmt.Sprintf("Initialization failed: %s", err.Error()))
			return err
		}
		path, _ := config.GetConfigPath()
		printSuccess("Configuration initialized!")
		fmt.Printf("Config file: %s\n", path)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printSuccess(msg string) {
	fmt.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "✗ %s\n", msg)
}

func init() {
	rootCmd.AddCommand(initCmd)
}
