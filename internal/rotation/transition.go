package rotation

// State is the rotation position. GroupIndex and ItemIndex are interpreted
// against the grouping of the latest snapshot.
type State struct {
	Mode       Mode `json:"mode"`
	GroupIndex int  `json:"group_index"`
	ItemIndex  int  `json:"item_index"`
}

// Initial is the state on start-up, whatever the data.
var Initial = State{Mode: World}

// Shape is the part of a grouping the transitions depend on.
type Shape struct {
	GroupSizes []int
	Regional   bool
}

// GroupCount returns the number of significant-event groups.
func (s Shape) GroupCount() int { return len(s.GroupSizes) }

// Equal reports whether two shapes would drive identical transitions.
func (s Shape) Equal(o Shape) bool {
	if s.Regional != o.Regional || len(s.GroupSizes) != len(o.GroupSizes) {
		return false
	}
	for i := range s.GroupSizes {
		if s.GroupSizes[i] != o.GroupSizes[i] {
			return false
		}
	}
	return true
}

type transitionFunc func(State, Shape) State

// transitions is the mode × tick table.
var transitions = map[Mode]transitionFunc{
	World:    fromWorld,
	Regional: fromRegional,
	Detail:   fromDetail,
}

// Next returns the state after one display interval. A state that no longer
// fits the shape is redirected to Initial instead of advancing.
func Next(s State, sh Shape) State {
	if n, corrected := Normalize(s, sh); corrected {
		return n
	}
	return transitions[s.Mode](s, sh)
}

// Normalize redirects states whose indices fall outside the shape to Initial
// and reports whether a correction was made.
func Normalize(s State, sh Shape) (State, bool) {
	if _, ok := transitions[s.Mode]; !ok {
		return Initial, true
	}
	count := sh.GroupCount()

	switch s.Mode {
	case Detail:
		if s.GroupIndex < 0 || s.GroupIndex >= count ||
			s.ItemIndex < 0 || s.ItemIndex >= sh.GroupSizes[s.GroupIndex] {
			return Initial, true
		}
	case Regional:
		if !sh.Regional {
			return Initial, true
		}
		fallthrough
	case World:
		if s.ItemIndex != 0 || s.GroupIndex < 0 || (s.GroupIndex > 0 && s.GroupIndex >= count) {
			return Initial, true
		}
	}
	return s, false
}

func fromWorld(s State, sh Shape) State {
	switch {
	case sh.GroupCount() == 0:
		return Initial
	case sh.Regional:
		return State{Mode: Regional, GroupIndex: s.GroupIndex}
	default:
		return State{Mode: Detail, GroupIndex: s.GroupIndex}
	}
}

func fromRegional(s State, sh Shape) State {
	if sh.GroupCount() == 0 {
		return Initial
	}
	return State{Mode: Detail, GroupIndex: s.GroupIndex}
}

func fromDetail(s State, sh Shape) State {
	if s.ItemIndex+1 < sh.GroupSizes[s.GroupIndex] {
		return State{Mode: Detail, GroupIndex: s.GroupIndex, ItemIndex: s.ItemIndex + 1}
	}
	if s.GroupIndex+1 < sh.GroupCount() {
		return State{Mode: World, GroupIndex: s.GroupIndex + 1}
	}
	return Initial
}
