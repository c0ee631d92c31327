package protocol

import "math"

// Setting describes one numeric room setting editable by the host.
type Setting struct {
	Name string
	Min  float64
	Max  float64
}

// Settings lists every numeric setting the server accepts via set-param,
// with the bounds the client enforces before emission.
var Settings = []Setting{
	{Name: "playerTime", Min: 0, Max: math.MaxFloat64},
	{Name: "teamTime", Min: 0, Max: math.MaxFloat64},
	{Name: "masterTime", Min: 0, Max: math.MaxFloat64},
	{Name: "revealTime", Min: 0, Max: math.MaxFloat64},
	{Name: "wordsLevel", Min: 1, Max: 4},
	{Name: "goal", Min: 1, Max: math.MaxFloat64},
}

// SettingByName looks up a setting definition. The second return reports
// whether the name is known; unknown names are never forwarded.
func SettingByName(name string) (Setting, bool) {
	for _, s := range Settings {
		if s.Name == name {
			return s, true
		}
	}
	return Setting{}, false
}

// Clamp bounds a value to the setting's range.
func (s Setting) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}
