package cli

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/transform"
)

// observationsFile holds one projection matrix per camera and, per point, one observation per
// camera in the same order.
type observationsFile struct {
	Projections [][][]float64 `json:"projections"`
	Points      [][][]float64 `json:"points"`
}

type triangulatedPoint struct {
	Homogeneous []float64  `json:"homogeneous"`
	Euclidean   *r3.Vector `json:"euclidean,omitempty"`
}

// TriangulateAction is the corresponding Action for 'triangulate'.
func TriangulateAction(cCtx *cli.Context) error {
	c, err := newTwoviewClient(cCtx)
	if err != nil {
		return err
	}
	defer c.close()
	return c.triangulateAction(cCtx)
}

func (c *twoviewClient) triangulateAction(cCtx *cli.Context) error {
	var in observationsFile
	if err := readJSONFile(cCtx.String(observationsFlag), &in); err != nil {
		return err
	}
	projections := make([]mat.Matrix, 0, len(in.Projections))
	for i, rows := range in.Projections {
		p, err := denseFromRows(rows)
		if err != nil {
			return errors.Wrapf(err, "projection %d", i)
		}
		projections = append(projections, p)
	}

	out := make([]triangulatedPoint, 0, len(in.Points))
	for i, point := range in.Points {
		observations := make([]r3.Vector, 0, len(point))
		for _, obs := range point {
			v, err := toHomogeneous(obs)
			if err != nil {
				return errors.Wrapf(err, "point %d", i)
			}
			observations = append(observations, v)
		}
		hp, err := transform.TriangulatePoint(projections, observations)
		if err != nil {
			return errors.Wrapf(err, "point %d", i)
		}
		tp := triangulatedPoint{Homogeneous: hp.Slice()}
		if pt, err := hp.Euclidean(); err == nil {
			tp.Euclidean = &pt
		} else {
			c.logger.Warnw("point at infinity", "point", i)
		}
		out = append(out, tp)
	}
	return c.writeJSON(map[string]interface{}{"points": out})
}
