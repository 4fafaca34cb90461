// Package cmd defines the lumiere command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/lumiere/internal/build"
	"github.com/bnema/lumiere/internal/cli"
)

var (
	app       *cli.App
	buildInfo build.Info

	inputFlag      string
	fullscreenFlag bool
	subtitlesFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "lumiere",
	Short: "A minimal video player",
	Long: `Lumiere plays a single video file or stream in a GTK window,
rendered straight from the GStreamer pipeline.

Point it at a local file or a URI and it plays. That is the whole job.`,
	Example: `  lumiere -i movie.mkv
  lumiere --input https://example.com/stream.m3u8 --fullscreen`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE:          runPlay,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Help and completion must work without a config file.
		switch cmd.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return nil
		}

		a, err := cli.NewApp()
		if err != nil {
			return err
		}
		a.BuildInfo = buildInfo
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "file path or URI to play (required)")
	rootCmd.Flags().BoolVarP(&fullscreenFlag, "fullscreen", "f", false, "start in fullscreen")
	rootCmd.Flags().BoolVarP(&subtitlesFlag, "subtitles", "s", false, "show embedded subtitles")
	_ = rootCmd.MarkFlagRequired("input")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetApp returns the shared CLI app state. Only valid inside a command run.
func GetApp() *cli.App {
	return app
}

// SetBuildInfo stores version metadata injected by the build.
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
