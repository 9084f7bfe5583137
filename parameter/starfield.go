package parameter

import (
	"time"
)

// Particle field population, drawn once per initialization
const (
	// StarCountMin/Max bound the uniform integer star count (inclusive)
	StarCountMin = 200
	StarCountMax = 350
)

// Per-star attributes, uniform over [Min, Max)
const (
	// StarRadiusMin/Max are circle radii in dots
	StarRadiusMin = 1.0
	StarRadiusMax = 2.0

	// StarFallSpeedMin/Max are vertical drift in dots per frame
	StarFallSpeedMin = 0.05
	StarFallSpeedMax = 0.2

	// StarOpacityMin/Max are fill alpha
	StarOpacityMin = 0.3
	StarOpacityMax = 0.8
)

// Frame loop
const (
	// RefreshRate is the default display refresh in frames per second
	RefreshRate = 60
	// RefreshRateMax caps configurable refresh
	RefreshRateMax = 240
	// FrameUpdateInterval is the default per-frame interval
	FrameUpdateInterval = time.Second / RefreshRate
)

// Colors
const (
	// StarColorHex is the off-white star fill
	StarColorHex = "#F5F7FF"
	// BackgroundHex is the backdrop color
	BackgroundHex = "#0F1B2A"
	// TitleColorHex is the banner title color
	TitleColorHex = "#FFFFFF"
	// TextColorHex is the banner tagline color
	TextColorHex = "#DDE6ED"
)

// Config reload
const (
	// ConfigReloadDebounce coalesces bursts of editor writes
	ConfigReloadDebounce = 200 * time.Millisecond
)
