package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/lumiere/internal/cli/styles"
	"github.com/bnema/lumiere/internal/media"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check GStreamer and hardware decoding support",
	Long: `Doctor inspects the GStreamer installation: required elements,
the VA plugin, and hardware decoders for common codecs. Run it when
playback fails or falls back to software decoding.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		result := media.NewDiagnostics().Run(app.Ctx())

		renderer := styles.NewDoctorRenderer(app.Theme)
		fmt.Println(renderer.Render(result))

		if !result.GStreamerAvailable || len(result.MissingRequired) > 0 {
			return errors.New("media requirements not met")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
