package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mgpai22/cuestrip/internal/timecode"
)

var ErrNoVideoStream = errors.New("no video stream found")

// JSON output from ffprobe -show_streams -show_format
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

func parseProbe(path string, data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var (
		stream    *ffprobeStream
		subtitles int
	)
	for i := range probe.Streams {
		switch probe.Streams[i].CodecType {
		case "video":
			if stream == nil {
				stream = &probe.Streams[i]
			}
		case "subtitle":
			subtitles++
		}
	}
	if stream == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoVideoStream)
	}

	info := &Info{
		Path:   path,
		Width:  stream.Width,
		Height: stream.Height,
		Codec:  stream.CodecName,

		SubtitleStreams: subtitles,
	}

	// r_frame_rate is the container timebase rate; avg_frame_rate covers
	// streams that leave it at 0/0
	for _, raw := range []string{stream.RFrameRate, stream.AvgFrameRate} {
		if rate, err := timecode.ParseFrameRate(raw); err == nil {
			info.FrameRate = rate
			break
		}
	}

	for _, raw := range []string{stream.Duration, probe.Format.Duration} {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil && seconds >= 0 {
			info.Duration = time.Duration(math.Round(seconds * float64(time.Second)))
			break
		}
	}

	return info, nil
}
