package cli

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/twoview/transform"
)

type fundamentalOutput struct {
	F         [][]float64             `json:"f"`
	Support   int                     `json:"support"`
	Total     int                     `json:"total"`
	Trials    int                     `json:"trials"`
	NextSeed  uint64                  `json:"next_seed"`
	Inliers   []bool                  `json:"inliers"`
	Residuals transform.ResidualStats `json:"residuals"`
}

// FundamentalMatrixAction is the corresponding Action for 'fmatrix'.
func FundamentalMatrixAction(cCtx *cli.Context) error {
	c, err := newTwoviewClient(cCtx)
	if err != nil {
		return err
	}
	defer c.close()
	return c.fundamentalMatrixAction(cCtx)
}

func (c *twoviewClient) fundamentalMatrixAction(cCtx *cli.Context) error {
	pts0, pts1, err := readMatches(cCtx.String(matchesFlag))
	if err != nil {
		return err
	}
	est, err := c.estimate(pts0, pts1)
	if err != nil {
		return err
	}
	if path := cCtx.String(plotFlag); path != "" {
		if err := plotInliers(path, pts1, est.Inliers); err != nil {
			return errors.Wrap(err, "could not plot inliers")
		}
		c.logger.Infow("wrote inlier plot", "path", path)
	}
	if cCtx.Bool(tableFlag) {
		renderMatrix(cCtx.App.Writer, "F", rowsFromDense(est.F))
		renderSummary(cCtx.App.Writer,
			"support", fmt.Sprintf("%d/%d", est.Support, len(pts0)),
			"trials", est.Trials,
			"next seed", uint64(est.NextSeed),
			"mean residual", est.Residuals.Mean,
			"median residual", est.Residuals.Median,
			"max residual", est.Residuals.Max)
		return nil
	}
	return c.writeJSON(fundamentalOutput{
		F:         rowsFromDense(est.F),
		Support:   est.Support,
		Total:     len(pts0),
		Trials:    est.Trials,
		NextSeed:  uint64(est.NextSeed),
		Inliers:   est.Inliers,
		Residuals: est.Residuals,
	})
}

func (c *twoviewClient) estimate(pts0, pts1 []r2.Point) (*transform.FundamentalEstimate, error) {
	e, err := transform.NewFundamentalEstimator(c.conf.Estimator, c.logger.Sublogger("fmatrix"))
	if err != nil {
		return nil, err
	}
	est, err := e.Estimate(pts0, pts1, c.conf.ThresholdPx, c.conf.Estimator.InitialSeed())
	if err != nil {
		return nil, errors.Wrap(err, "could not estimate fundamental matrix")
	}
	c.logger.Debugw("estimated fundamental matrix",
		"outliers", lo.Count(est.Inliers, false),
		"median_residual", est.Residuals.Median)
	return est, nil
}
