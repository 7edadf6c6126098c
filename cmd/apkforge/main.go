package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "apkforge",
	Short: "APKForge patch orchestrator",
	Long:  `APKForge - sets up the patcher toolchain, applies patches to an Android package, and optionally deploys it to a connected device`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full setup-and-patch workflow",
	Run: func(cmd *cobra.Command, args []string) {
		runWorkflow()
	},
}

var patchesCmd = &cobra.Command{
	Use:   "patches [base-apk]",
	Short: "List the patches available for a base package",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		listPatches(args[0])
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices reported by the debug bridge",
	Run: func(cmd *cobra.Command, args []string) {
		listDevices()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("APKForge v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is apkforge.yaml in the user config dir)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(patchesCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
