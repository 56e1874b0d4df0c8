package service

import (
	"github.com/swaralaya/scoreboard/internal/domain/model"
	"github.com/swaralaya/scoreboard/internal/domain/standings"
)

// EventsView is the carousel view model handed to the rendering surface:
// the slide list plus the current cursor and the view state.
type EventsView struct {
	State  standings.State `json:"state"`
	Reason string          `json:"reason,omitempty"`
	Slides []model.Slide   `json:"slides"`
	Index  int             `json:"index"`
}
