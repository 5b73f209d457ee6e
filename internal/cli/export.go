package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/cuestrip/internal/convert"
	"github.com/mgpai22/cuestrip/internal/timeline"
	"github.com/mgpai22/cuestrip/internal/video"
)

var exportCmd = &cobra.Command{
	Use:   "export [output_srt]",
	Short: "Write the selected text strips of a project to an SRT file",
	Long: `Export the selected text strips of a timeline project as a SubRip file.
Strips are ordered by start frame and renumbered from 1.

--channel replaces the saved selection with every text strip on that
channel. --embed-into muxes the written SRT into a copy of a video as a
soft subtitle track.

Examples:
  cuestrip export out.srt --project edit.json
  cuestrip export out.srt --project edit.json --channel 3
  cuestrip export out.srt --project edit.json --embed-into movie.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().
		StringP("project", "p", "", "Timeline project file")
	exportCmd.Flags().
		Int("channel", 0, "Export every text strip on this channel instead of the selection")
	exportCmd.Flags().
		Bool("use-source-fps", true, "Use the project or source video frame rate")
	exportCmd.Flags().
		Float64("fps", convert.DefaultFPS, "Custom frame rate when --use-source-fps=false")
	exportCmd.Flags().
		String("source-video", "", "Video to probe for the frame rate when the project has none")
	exportCmd.Flags().
		String("embed-into", "", "Video to mux the exported subtitles into")
	exportCmd.Flags().
		String("embed-output", "", "Output video for --embed-into (default <video>.subbed.<ext>)")
	exportCmd.Flags().
		String("language", "", "ISO 639-2 language tag for the embedded track (e.g. eng)")

	_ = exportCmd.MarkFlagRequired("project")
}

func runExport(cmd *cobra.Command, args []string) error {
	outputPath := args[0]
	ctx := cmd.Context()

	projectPath, _ := cmd.Flags().GetString("project")
	channel, _ := cmd.Flags().GetInt("channel")
	sourceVideo, _ := cmd.Flags().GetString("source-video")
	embedInto, _ := cmd.Flags().GetString("embed-into")
	embedOutput, _ := cmd.Flags().GetString("embed-output")
	language, _ := cmd.Flags().GetString("language")

	if ext := strings.ToLower(filepath.Ext(outputPath)); ext != ".srt" {
		return fmt.Errorf("unsupported output format %q: use .srt", ext)
	}
	if channel != 0 && (channel < timeline.MinChannel || channel > timeline.MaxChannel) {
		return &convert.ConfigError{
			Field:  "channel",
			Value:  channel,
			Reason: fmt.Sprintf("must be between %d and %d", timeline.MinChannel, timeline.MaxChannel),
		}
	}
	if embedInto != "" && !video.IsVideoFile(embedInto) {
		return fmt.Errorf("unsupported video file: %s", embedInto)
	}

	project, err := timeline.Load(projectPath)
	if err != nil {
		return err
	}
	if channel != 0 {
		project.SelectChannel(channel)
	}

	processor := newProcessor()
	fps, err := resolveFPS(ctx, project, sourceVideo, processor)
	if err != nil {
		return err
	}

	logger.Infow("Exporting subtitles",
		"project", projectPath,
		"output", outputPath,
		"channel", channel,
		"fps", fps,
	)

	exporter := convert.NewExporter(logger)
	result, err := exporter.Export(ctx, convert.ExportOptions{
		DestinationPath: outputPath,
		FPS:             fps,
	}, project)
	if err != nil {
		return err
	}

	reportSuccess(cmd.OutOrStdout(), result.Destination, result.Count, "exported", result.FPS)

	if embedInto == "" {
		return nil
	}

	if embedOutput == "" {
		ext := filepath.Ext(embedInto)
		embedOutput = strings.TrimSuffix(embedInto, ext) + ".subbed" + ext
	}

	logger.Infow("Embedding subtitles",
		"video", embedInto,
		"subtitles", outputPath,
		"output", embedOutput,
	)

	if err := processor.EmbedSubtitles(
		ctx,
		embedInto,
		outputPath,
		embedOutput,
		video.EmbedOptions{Language: language},
	); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(embedOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles embedded: %s\n", absOutput)
	return nil
}
