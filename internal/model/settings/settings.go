package settings

// Storage keys, one per setting. Kept as individual keys so a partial write
// failure never corrupts the other settings.
const (
	KeyAutoGreeting  = "magonotec_setting_autoGreeting"
	KeyMascotVisible = "magonotec_setting_mascotVisible"
	KeyFontSize      = "magonotec_setting_fontSize"
)

// Toggle values.
const (
	On  = "on"
	Off = "off"
)

// Font size values.
const (
	FontNormal = "normal"
	FontLarge  = "large"
)

// Settings are the user-facing preferences from the "かんたん設定" modal.
type Settings struct {
	AutoGreeting  string `json:"autoGreeting"`
	MascotVisible string `json:"mascotVisible"`
	FontSize      string `json:"fontSize"`
}

// Default returns the out-of-the-box preferences.
func Default() Settings {
	return Settings{
		AutoGreeting:  On,
		MascotVisible: On,
		FontSize:      FontNormal,
	}
}

// Normalize replaces unknown values with defaults so a stale or hand-edited
// store can never disable the session.
func Normalize(s Settings) Settings {
	if s.AutoGreeting != On && s.AutoGreeting != Off {
		s.AutoGreeting = On
	}
	if s.MascotVisible != On && s.MascotVisible != Off {
		s.MascotVisible = On
	}
	if s.FontSize != FontNormal && s.FontSize != FontLarge {
		s.FontSize = FontNormal
	}
	return s
}
