// Package display defines the drawing contract the UI renders against and a
// text-cell Canvas implementation used by the simulator and tests.
package display

// Color is a logical palette entry; monochrome panels map everything but Dark to "on".
type Color uint8

const (
	Dark Color = iota
	Light
	Red
	Green
	Blue
	Yellow
	Orange
)

// Bitmap is a named monochrome image. Drivers that cannot blit pixels may draw Name instead.
type Bitmap struct {
	Name   string
	Width  int
	Height int
	Bits   []byte
}

// Driver is the display primitive library the UI draws with.
type Driver interface {
	IsOn() bool
	TurnOn()
	TurnOff()

	Width() int
	Height() int

	StartFrame()
	EndFrame()

	SetColor(c Color)
	SetTextSize(size int)
	SetCursor(x, y int)
	Print(s string)
	PrintWordWrap(s string, maxWidth int)
	DrawTextCentered(x, y int, s string)
	DrawTextEllipsized(x, y, maxWidth int, s string)
	TextWidth(s string) int

	FillRect(x, y, w, h int)
	DrawRect(x, y, w, h int)
	DrawBitmap(x, y int, bm Bitmap)

	// TranslateUTF8ToBlocks returns s in the driver's fixed-width character set.
	TranslateUTF8ToBlocks(s string) string
}
