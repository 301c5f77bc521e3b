package tui

import "time"

const (
	// tickInterval paces the controller loop; every tick advances simulated
	// time by scenario.TickMS.
	tickInterval = 10 * time.Millisecond
	// longPressHoldMS is how long the simulated button stays down after F4.
	longPressHoldMS = 600

	statusLines = 3
	framePadX   = 1
)
