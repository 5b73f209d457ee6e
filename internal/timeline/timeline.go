package timeline

// channel bounds of the timeline
const (
	MinChannel = 1
	MaxChannel = 32
)

// display attributes applied by the timeline to text strips; the
// conversion core only carries them through
type Style struct {
	FontSize    int        `json:"font_size" mapstructure:"font_size"`
	LocationX   float64    `json:"location_x" mapstructure:"location_x"`
	LocationY   float64    `json:"location_y" mapstructure:"location_y"`
	UseShadow   bool       `json:"use_shadow" mapstructure:"use_shadow"`
	ShadowColor [4]float64 `json:"shadow_color" mapstructure:"shadow_color"`
	BlendType   string     `json:"blend_type" mapstructure:"blend_type"`
	Align       string     `json:"align" mapstructure:"align"`
}

// bottom center, black drop shadow
func DefaultStyle() Style {
	return Style{
		FontSize:    24,
		LocationX:   0.5,
		LocationY:   0.1,
		UseShadow:   true,
		ShadowColor: [4]float64{0, 0, 0, 1},
		BlendType:   "ALPHA_OVER",
		Align:       "CENTER",
	}
}

// PlacedEntry is one cue in the frame domain. EndFrame is exclusive.
type PlacedEntry struct {
	Name       string
	StartFrame int
	EndFrame   int
	Text       string
	Channel    int
	Style      *Style
}

func (e PlacedEntry) Duration() int {
	return e.EndFrame - e.StartFrame
}

// Placer receives imported cues.
type Placer interface {
	PlaceEntries(entries []PlacedEntry, channel int) error
}

// Selector supplies the cues to export.
type Selector interface {
	SelectedEntries() ([]PlacedEntry, error)
}
