package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

type keyBinding struct {
	key ebiten.Key
	dir core.Direction
}

// Arrow keys and WASD both steer. Keys are polled in this order, so when
// several are pressed on one tick the last one listed wins.
var keyBindings = []keyBinding{
	{ebiten.KeyArrowUp, core.Up},
	{ebiten.KeyArrowDown, core.Down},
	{ebiten.KeyArrowLeft, core.Left},
	{ebiten.KeyArrowRight, core.Right},
	{ebiten.KeyW, core.Up},
	{ebiten.KeyS, core.Down},
	{ebiten.KeyA, core.Left},
	{ebiten.KeyD, core.Right},
}

// pressedDirections lists the headings of the pressed steering keys in
// binding order.
func pressedDirections(pressed func(ebiten.Key) bool) []core.Direction {
	var dirs []core.Direction
	for _, b := range keyBindings {
		if pressed(b.key) {
			dirs = append(dirs, b.dir)
		}
	}
	return dirs
}

type Handler struct {
	// Steering target, nil when no human is playing
	human *game.ManualController

	restart bool
	quit    bool
	paused  bool
}

func NewHandler(human *game.ManualController) *Handler {
	return &Handler{human: human}
}

// Update polls the keyboard once per tick.
func (h *Handler) Update() {
	if h.human != nil {
		for _, d := range pressedDirections(inpututil.IsKeyJustPressed) {
			h.human.Request(d)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		h.restart = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		h.paused = !h.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.quit = true
	}
}

// RestartRequested reports and clears a pending restart.
func (h *Handler) RestartRequested() bool {
	r := h.restart
	h.restart = false
	return r
}

func (h *Handler) QuitRequested() bool { return h.quit }
func (h *Handler) Paused() bool        { return h.paused }
func (h *Handler) HasHuman() bool      { return h.human != nil }

// ClearSteering drops any heading queued before a restart.
func (h *Handler) ClearSteering() {
	if h.human != nil {
		h.human.Clear()
	}
}
