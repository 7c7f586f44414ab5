// Package styles holds the parley TUI theme tokens.
package styles

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// MessageColors defines colors for message rows.
type MessageColors struct {
	Own    string
	Other  string
	Sender string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header     string
	Footer     string
	ReadMarker string
	LiveBadge  string
}

// Theme defines the parley TUI style tokens.
type Theme struct {
	Name string

	Base    BaseColors
	Message MessageColors
	Chrome  ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name: "default",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Message: MessageColors{
		Own:    "81",
		Other:  "147",
		Sender: "110",
	},
	Chrome: ChromeColors{
		Header:     "111",
		Footer:     "110",
		ReadMarker: "41",
		LiveBadge:  "203",
	},
}

// HighContrastTheme maximizes foreground/background separation.
var HighContrastTheme = Theme{
	Name: "high-contrast",
	Base: BaseColors{
		Background: "0",
		Foreground: "15",
		Muted:      "250",
		Accent:     "51",
		Border:     "15",
	},
	Message: MessageColors{
		Own:    "51",
		Other:  "15",
		Sender: "226",
	},
	Chrome: ChromeColors{
		Header:     "15",
		Footer:     "15",
		ReadMarker: "46",
		LiveBadge:  "196",
	},
}

// Lookup returns the named theme, falling back to the default palette.
func Lookup(name string) Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return DefaultTheme
}
