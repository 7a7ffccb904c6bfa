package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Command is a viewer action requested from the keyboard
type Command int

const (
	CommandNone Command = iota
	// CommandNextView cycles through the players and the observer view
	CommandNextView
	CommandTogglePause
	// CommandSingleStep advances one step while paused
	CommandSingleStep
	// CommandToggleDisabled flips observer mode on the viewed player's shroud
	CommandToggleDisabled
)

var keyBindings = []struct {
	key     ebiten.Key
	command Command
}{
	{ebiten.KeyTab, CommandNextView},
	{ebiten.KeySpace, CommandTogglePause},
	{ebiten.KeyPeriod, CommandSingleStep},
	{ebiten.KeyD, CommandToggleDisabled},
}

type Handler struct {
	// Mouse state
	mouseX, mouseY int

	commands []Command
}

func NewHandler() *Handler {
	return &Handler{
		commands: make([]Command, 0, len(keyBindings)),
	}
}

// Update polls input once per frame
func (h *Handler) Update() {
	h.mouseX, h.mouseY = GetCursorPosition()

	h.commands = h.commands[:0]
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			h.commands = append(h.commands, b.command)
		}
	}
}

// Commands returns the commands requested this frame
func (h *Handler) Commands() []Command {
	return h.commands
}

// Cursor returns the last polled mouse position
func (h *Handler) Cursor() (int, int) {
	return h.mouseX, h.mouseY
}

// NextView cycles the viewed player: 0, 1, ..., players-1, then the
// observer view (-1), then back to 0
func NextView(current, players int) int {
	if players <= 0 {
		return -1
	}
	next := current + 1
	if next >= players {
		return -1
	}
	return next
}
