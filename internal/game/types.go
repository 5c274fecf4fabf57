package game

import (
	"chosenoffset.com/sightline/internal/core/shadows"
)

// Observer is the viewpoint the visibility polygon is computed from.
type Observer struct {
	Pos   shadows.Point
	Speed float64 // pixels per tick when moved with the keyboard
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
