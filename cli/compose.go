package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/twoview/transform"
)

type camerasFile struct {
	P0 [][]float64 `json:"p0"`
	P1 [][]float64 `json:"p1"`
}

// ComposeAction is the corresponding Action for 'compose'.
func ComposeAction(cCtx *cli.Context) error {
	c, err := newTwoviewClient(cCtx)
	if err != nil {
		return err
	}
	defer c.close()
	return c.composeAction(cCtx)
}

func (c *twoviewClient) composeAction(cCtx *cli.Context) error {
	var cameras camerasFile
	if err := readJSONFile(cCtx.String(camerasFlag), &cameras); err != nil {
		return err
	}
	p0, err := denseFromRows(cameras.P0)
	if err != nil {
		return errors.Wrap(err, "p0")
	}
	p1, err := denseFromRows(cameras.P1)
	if err != nil {
		return errors.Wrap(err, "p1")
	}
	f, err := transform.ComposeFundamentalMatrix(p0, p1)
	if err != nil {
		return err
	}
	return c.writeJSON(map[string]interface{}{"f": rowsFromDense(f)})
}
