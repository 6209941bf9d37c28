// Package cli implements the vibestream command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vibestream/vibestream/internal/core/version"
)

var rootCmd = &cobra.Command{
	Use:     "vibestream",
	Short:   "Media conversion API server wrapping yt-dlp and ffmpeg",
	Version: version.Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
