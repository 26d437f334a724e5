package cli

import (
	"image/color"

	"github.com/golang/geo/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	inlierColor  = color.RGBA{R: 40, G: 160, B: 60, A: 255}
	outlierColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// plotInliers scatters pts, split by the inlier mask, and saves the plot to path. The image y axis
// points down so it is negated.
func plotInliers(path string, pts []r2.Point, inliers []bool) error {
	p := plot.New()
	p.Title.Text = "correspondences in the second image"
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "-y (px)"

	inPts := make(plotter.XYs, 0, len(pts))
	outPts := make(plotter.XYs, 0, len(pts))
	for i, pt := range pts {
		xy := plotter.XY{X: pt.X, Y: -pt.Y}
		if inliers[i] {
			inPts = append(inPts, xy)
		} else {
			outPts = append(outPts, xy)
		}
	}

	for _, series := range []struct {
		name  string
		xys   plotter.XYs
		color color.Color
		shape draw.GlyphDrawer
	}{
		{"inliers", inPts, inlierColor, draw.CircleGlyph{}},
		{"outliers", outPts, outlierColor, draw.CrossGlyph{}},
	} {
		if len(series.xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(series.xys)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = series.color
		scatter.GlyphStyle.Shape = series.shape
		scatter.GlyphStyle.Radius = vg.Points(2)
		p.Add(scatter)
		p.Legend.Add(series.name, scatter)
	}
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}
