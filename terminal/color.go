package terminal

import (
	"fmt"
	"os"
	"strings"
)

// ColorMode selects terminal color depth
type ColorMode uint8

const (
	ColorModeAuto ColorMode = iota
	ColorModeTrueColor
	ColorMode256
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeTrueColor:
		return "truecolor"
	case ColorMode256:
		return "256"
	default:
		return "auto"
	}
}

// ParseColorMode accepts auto, truecolor (true, 24bit) and 256
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorModeAuto, nil
	case "truecolor", "true", "24bit":
		return ColorModeTrueColor, nil
	case "256":
		return ColorMode256, nil
	default:
		return ColorModeAuto, fmt.Errorf("unknown color mode %q (want auto, truecolor or 256)", s)
	}
}

// applyEnv steers tcell's color detection, which reads the environment at screen creation
// 256 mode makes tcell map RGB colors onto the palette
func (m ColorMode) applyEnv() {
	switch m {
	case ColorModeTrueColor:
		os.Setenv("COLORTERM", "truecolor")
		os.Unsetenv("TCELL_TRUECOLOR")
	case ColorMode256:
		os.Setenv("TCELL_TRUECOLOR", "disable")
	}
}
