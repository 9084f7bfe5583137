package render

// Colors shared by the render tests
var (
	RGBBlack = RGB{0, 0, 0}
	RGBWhite = RGB{255, 255, 255}

	// RgbBackground matches the default backdrop in parameter.BackgroundHex
	RgbBackground = RGB{0x0F, 0x1B, 0x2A}
)
