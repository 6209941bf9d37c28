package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vibestream/vibestream/internal/core/auth"
	"github.com/vibestream/vibestream/internal/core/config"
	"github.com/vibestream/vibestream/internal/core/extractor"
	"github.com/vibestream/vibestream/internal/core/transcode"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external tools and configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()

		bold := color.New(color.Bold)
		bold.Println("vibestream environment check")
		fmt.Println()

		checkLine("yt-dlp", extractor.NewYTDLP(cfg.Tools.YTDLPPath).Available(),
			"install yt-dlp or set tools.ytdlp_path")
		checkLine("ffmpeg", transcode.NewFFmpeg(cfg.Tools.FFmpegPath).Available(),
			"install ffmpeg or set tools.ffmpeg_path (embedded fallback covers audio only)")
		checkLine("cookie jar", auth.CookiePath(cfg.Tools.CookieFile) != "",
			"optional: set tools.cookie_file to unlock the authenticated fallback")

		fmt.Println()
		if config.Exists() {
			fmt.Printf("config: %s\n", config.SavePath())
		} else {
			fmt.Printf("config: defaults (run 'vibestream config init' to create %s)\n",
				config.SavePath())
		}
	},
}

func checkLine(name string, ok bool, hint string) {
	if ok {
		fmt.Printf("  %s %s\n", color.GreenString("✓"), name)
		return
	}
	fmt.Printf("  %s %s: %s\n", color.YellowString("✗"), name, hint)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
