package cli

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/urfave/cli/v2"

	"go.viam.com/twoview/linalg"
	"go.viam.com/twoview/transform"
)

type poseOutput struct {
	Rotation    [][]float64 `json:"rotation"`
	Translation r3.Vector   `json:"translation"`
	Support     int         `json:"support"`
	Total       int         `json:"total"`
}

// PoseAction is the corresponding Action for 'pose'.
func PoseAction(cCtx *cli.Context) error {
	c, err := newTwoviewClient(cCtx)
	if err != nil {
		return err
	}
	defer c.close()
	return c.poseAction(cCtx)
}

func (c *twoviewClient) poseAction(cCtx *cli.Context) error {
	intrinsics := c.conf.Intrinsics
	if path := cCtx.String(intrinsicsFlag); path != "" {
		var err error
		intrinsics, err = transform.NewPinholeCameraIntrinsicsFromJSONFile(path)
		if err != nil {
			return err
		}
	}
	if err := intrinsics.CheckValid(); err != nil {
		return err
	}

	pts0, pts1, err := readMatches(cCtx.String(matchesFlag))
	if err != nil {
		return err
	}
	est, err := c.estimate(pts0, pts1)
	if err != nil {
		return err
	}
	in0 := make([]r2.Point, 0, est.Support)
	in1 := make([]r2.Point, 0, est.Support)
	for i, inlier := range est.Inliers {
		if inlier {
			in0 = append(in0, pts0[i])
			in1 = append(in1, pts1[i])
		}
	}

	k := intrinsics.GetCameraMatrix()
	pose, err := transform.RecoverPose(linalg.GonumDecomposer{}, est.F, k, k, in0, in1)
	if err != nil {
		return err
	}
	if cCtx.Bool(tableFlag) {
		renderMatrix(cCtx.App.Writer, "R", rowsFromDense(pose.Rotation))
		renderSummary(cCtx.App.Writer,
			"translation", fmt.Sprintf("(%.6g, %.6g, %.6g)", pose.Translation.X, pose.Translation.Y, pose.Translation.Z),
			"support", fmt.Sprintf("%d/%d", est.Support, len(pts0)))
		return nil
	}
	return c.writeJSON(poseOutput{
		Rotation:    rowsFromDense(pose.Rotation),
		Translation: pose.Translation,
		Support:     est.Support,
		Total:       len(pts0),
	})
}
