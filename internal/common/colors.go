package common

import (
	"image/color"

	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
)

// AgentColors defines the trail color of each agent
var AgentColors = map[core.Owner]color.RGBA{
	core.Empty:  {20, 20, 28, 255},   // Arena floor
	core.Agent1: {220, 60, 60, 255},  // Red
	core.Agent2: {60, 120, 230, 255}, // Blue
}

// AgentColor returns the color for an owner, gray for anything unknown
func AgentColor(o core.Owner) color.RGBA {
	if c, ok := AgentColors[o]; ok {
		return c
	}
	return color.RGBA{120, 120, 120, 255}
}

// HeadColor brightens an agent's color for the cell its cycle is on
func HeadColor(o core.Owner) color.RGBA {
	c := AgentColor(o)
	lift := func(v uint8) uint8 { return v + (255-v)/2 }
	return color.RGBA{lift(c.R), lift(c.G), lift(c.B), c.A}
}

// UI colors
var (
	BackgroundColor = color.Black
	GridLineColor   = color.RGBA{40, 40, 48, 255}
	TextColor       = color.White
	ChartBackground = color.White
	ChartAxisColor  = color.RGBA{60, 60, 60, 255}
)
