package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = ""

	offline bool

	rootCmd = &cobra.Command{
		Use:          "sceneling",
		Short:        "Scene-based English practice backend",
		Long:         "SceneLing serves streamed roleplay chat, translation, speech synthesis and photo scene analysis over HTTP.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runServe,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	if Version == "" {
		Version = "dev"
	}
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the mock model and locally generated audio")

	rootCmd.AddCommand(serveCmd, speakCmd)
}
