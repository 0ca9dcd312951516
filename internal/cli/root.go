package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/FreightFlow/FreightFlow/internal/cli.version=1.2.3"
	version = "1.0.0"
	logo    = "\n" +
		"  _____         _       _     _    _____ _\n" +
		" |  ___| __ ___(_) __ _| |__ | |_ |  ___| | _____      __\n" +
		" | |_ | '__/ _ \\ |/ _` | '_ \\| __|| |_  | |/ _ \\ \\ /\\ / /\n" +
		" |  _|| | |  __/ | (_| | | | | |_ |  _| | | (_) \\ V  V /\n" +
		" |_|  |_|  \\___|_|\\__, |_| |_|\\__||_|   |_|\\___/ \\_/\\_/\n" +
		"                  |___/\n"
)

var rootCmd = &cobra.Command{
	Use:   "freightflow",
	Short: "FreightFlow - Truck booking agent gateway",
	Long:  color.CyanString(logo) + "\nA secure agentic workflow gateway for truck and trip booking.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ FreightFlow Version")
		fmt.Printf("Version: %s\n", version)
	},
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(securityCmd)
}
