package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Open creates and initializes a tcell screen in the requested color mode
// The caller owns the screen and must call Fini
func Open(mode ColorMode) (tcell.Screen, error) {
	mode.applyEnv()

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := Setup(screen); err != nil {
		return nil, err
	}
	return screen, nil
}

// Setup initializes an existing screen: no cursor, no mouse, default style cleared
func Setup(screen tcell.Screen) error {
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	screen.DisableMouse()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	return nil
}
