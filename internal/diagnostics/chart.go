package diagnostics

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
	"github.com/mitchelldurbincs/LightTrailRL/internal/game/core"
	"gonum.org/v1/gonum/floats"
)

const (
	chartWidth  = 1000
	chartHeight = 500
	chartMargin = 60.0
)

// RenderRewards draws both agents' episode totals as line series on a
// shared axis.
func RenderRewards(rewards1, rewards2 []float64) image.Image {
	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(common.ChartBackground)
	dc.Clear()

	left, top := chartMargin, chartMargin
	right, bottom := float64(chartWidth)-chartMargin/2, float64(chartHeight)-chartMargin
	lo, hi := seriesRange(rewards1, rewards2)

	// Axes
	dc.SetColor(common.ChartAxisColor)
	dc.SetLineWidth(1.5)
	dc.DrawLine(left, top, left, bottom)
	dc.DrawLine(left, bottom, right, bottom)
	dc.Stroke()

	n := len(rewards1)
	if len(rewards2) > n {
		n = len(rewards2)
	}
	dc.DrawStringAnchored("Rewards per Episode", float64(chartWidth)/2, top/2, 0.5, 0.5)
	dc.DrawStringAnchored("Episode", (left+right)/2, bottom+chartMargin/2, 0.5, 0.5)
	dc.DrawStringAnchored("Total Reward", left/2, top-12, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", hi), left-6, top, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", lo), left-6, bottom, 1, 0.5)
	dc.DrawStringAnchored("0", left, bottom+12, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d", max(n-1, 0)), right, bottom+12, 0.5, 0.5)

	xAt := func(i int) float64 {
		if n <= 1 {
			return left
		}
		return left + float64(i)*(right-left)/float64(n-1)
	}
	yAt := func(v float64) float64 {
		return bottom - (v-lo)/(hi-lo)*(bottom-top)
	}

	for k, series := range [][]float64{rewards1, rewards2} {
		owner := core.Owner(k + 1)
		dc.SetColor(common.AgentColor(owner))
		dc.SetLineWidth(1)
		for i, v := range series {
			if i == 0 {
				dc.MoveTo(xAt(i), yAt(v))
				continue
			}
			dc.LineTo(xAt(i), yAt(v))
		}
		if len(series) == 1 {
			dc.DrawCircle(xAt(0), yAt(series[0]), 2)
			dc.Fill()
		}
		dc.Stroke()

		// Legend
		ly := top + 16*float64(k)
		dc.DrawRectangle(right-110, ly-4, 14, 8)
		dc.Fill()
		dc.SetColor(common.ChartAxisColor)
		dc.DrawStringAnchored(fmt.Sprintf("Player %d", k+1), right-90, ly, 0, 0.5)
	}

	return dc.Image()
}

// PlotRewards writes the reward chart as a PNG to path.
func PlotRewards(path string, rewards1, rewards2 []float64) error {
	img := RenderRewards(rewards1, rewards2)
	err := common.WriteFileAtomic(path, func(w io.Writer) error {
		return gg.NewContextForImage(img).EncodePNG(w)
	})
	if err != nil {
		return fmt.Errorf("plot rewards: %w", err)
	}
	return nil
}

// seriesRange returns the y range covering every value, never empty
func seriesRange(series ...[]float64) (float64, float64) {
	var all []float64
	for _, s := range series {
		all = append(all, s...)
	}
	if len(all) == 0 {
		return -1, 1
	}
	lo, hi := floats.Min(all), floats.Max(all)
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}
