package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/cuestrip/internal/convert"
	"github.com/mgpai22/cuestrip/internal/timecode"
	"github.com/mgpai22/cuestrip/internal/timeline"
)

var importCmd = &cobra.Command{
	Use:   "import [srt_file]",
	Short: "Place SRT subtitles on a timeline project as text strips",
	Long: `Import a SubRip file into a timeline project. Every subtitle becomes a
selected text strip on the chosen channel, starting at --start-frame.

The frame rate is the project's own (or its source video's) unless
--use-source-fps=false, in which case --fps is used.

Examples:
  cuestrip import movie.srt --project edit.json
  cuestrip import movie.srt --project edit.json --channel 3 --start-frame 100
  cuestrip import movie.srt --project edit.json --use-source-fps=false --fps 23.976`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().
		StringP("project", "p", "", "Timeline project file (created if missing)")
	importCmd.Flags().
		Int("start-frame", convert.DefaultStartFrame, "Frame the SRT time zero maps to")
	importCmd.Flags().
		Int("channel", convert.DefaultChannel, "Channel for the new strips (1-32)")
	importCmd.Flags().
		Bool("use-source-fps", true, "Use the project or source video frame rate")
	importCmd.Flags().
		Float64("fps", convert.DefaultFPS, "Custom frame rate when --use-source-fps=false")
	importCmd.Flags().
		String("source-video", "", "Video to probe for the frame rate when the project has none")

	_ = importCmd.MarkFlagRequired("project")
}

func runImport(cmd *cobra.Command, args []string) error {
	srtPath := args[0]
	ctx := cmd.Context()

	projectPath, _ := cmd.Flags().GetString("project")
	sourceVideo, _ := cmd.Flags().GetString("source-video")

	channel := cfg.Import.Channel
	if cmd.Flags().Changed("channel") {
		channel, _ = cmd.Flags().GetInt("channel")
	}

	project, err := timeline.LoadOrNew(projectPath)
	if err != nil {
		return err
	}

	fps, err := resolveFPS(ctx, project, sourceVideo, newProcessor())
	if err != nil {
		return err
	}

	logger.Infow("Importing subtitles",
		"input", srtPath,
		"project", projectPath,
		"channel", channel,
		"start_frame", cfg.Import.StartFrame,
		"fps", fps,
	)

	style := cfg.Style
	importer := convert.NewImporter(logger)
	result, err := importer.Import(ctx, convert.ImportOptions{
		SourcePath: srtPath,
		StartFrame: cfg.Import.StartFrame,
		Channel:    channel,
		FPS:        fps,
		Style:      &style,
	}, project)
	if err != nil {
		return err
	}

	if result.Skipped > 0 {
		logger.Warnw("Skipped malformed subtitle blocks",
			"skipped", result.Skipped,
			"hint", "run with --verbose for line numbers",
		)
	}

	if project.FrameRate.IsZero() {
		rate, err := timecode.FrameRateFromFloat(fps)
		if err != nil {
			return err
		}
		project.FrameRate = rate
		logger.Debugw("Recorded project frame rate", "frame_rate", rate.String())
	}

	if err := project.Save(projectPath); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	reportSuccess(cmd.OutOrStdout(), result.Source, result.Count, "imported", result.FPS)
	return nil
}
