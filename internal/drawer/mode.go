package drawer

// Mode decides how pointer gestures over the frame are interpreted.
type Mode int

const (
	ModeClick Mode = iota
	ModeSelection
	ModePour
)

// Next cycles to the next mode, wrapping.
func (m Mode) Next() Mode {
	switch m {
	case ModeClick:
		return ModeSelection
	case ModeSelection:
		return ModePour
	default:
		return ModeClick
	}
}

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSelection:
		return "selection"
	case ModePour:
		return "pour"
	default:
		return "click"
	}
}

// Icon returns a short indicator for the status line.
func (m Mode) Icon() string {
	switch m {
	case ModeSelection:
		return "[select]"
	case ModePour:
		return "[pour]"
	default:
		return "[click]"
	}
}
