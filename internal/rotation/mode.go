package rotation

import "fmt"

// Mode is the view currently on screen.
type Mode int

// Display modes.
const (
	World Mode = iota
	Regional
	Detail
)

var modeNames = map[Mode]string{
	World:    "world",
	Regional: "regional",
	Detail:   "detail",
}

// Modes lists every mode in transition order.
var Modes = []Mode{World, Regional, Detail}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MarshalText renders the mode by name in JSON and logs.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	for mode, name := range modeNames {
		if name == string(text) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", text)
}
