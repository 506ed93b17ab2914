// Package rotation decides what the display shows next.
//
// The display is a three-state machine: the world map, an optional regional
// map and a detail card per significant event. Every transition is driven by
// one display interval elapsing; nothing else moves the machine.
//
//	World ──► Regional ──► Detail(item 0) ──► … ──► Detail(last item)
//	  ▲            │                                     │
//	  │            └── no significant events ────────────┤
//	  └──────────── next group, or group 0 after the last┘
//
// Each group's tour restarts from the world view. When there are no
// significant events the machine stays on the world view indefinitely.
//
// Transitions are a pure function of the current [State] and the [Shape] of
// the grouping derived from the latest event snapshot ([Next]). The [Engine]
// owns the single display timer, re-derives the shape on every tick and
// cancels the pending timer whenever a new snapshot changes the shape.
package rotation
