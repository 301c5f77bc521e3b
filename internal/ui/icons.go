package ui

import "github.com/meshcore-dev/companion-ui/internal/display"

//nolint:gochecknoglobals // immutable artwork.
var (
	iconLogo         = display.Bitmap{Name: "MeshCore", Width: 128, Height: 13}
	iconBluetoothOn  = display.Bitmap{Name: "BT ON", Width: 32, Height: 32}
	iconBluetoothOff = display.Bitmap{Name: "BT OFF", Width: 32, Height: 32}
	iconAdvert       = display.Bitmap{Name: "ADVERT", Width: 32, Height: 32}
	iconPower        = display.Bitmap{Name: "POWER", Width: 32, Height: 32}
)

const pressLabel = "long press"
