package cli

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/config"
	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/utils"
)

// twoviewClient wraps a cli.Context with the config and logger every command needs.
type twoviewClient struct {
	c       *cli.Context
	conf    *config.Config
	logger  logging.Logger
	logFile *logging.FileAppender
}

func newTwoviewClient(c *cli.Context) (*twoviewClient, error) {
	conf := &config.Config{}
	if path := c.String(configFlag); path != "" {
		var err error
		conf, err = config.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read config %q", path)
		}
	} else {
		conf.SetDefaults()
	}

	// stdout is reserved for results
	logger := logging.NewBlankLogger("twoview")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	var logFile *logging.FileAppender
	if path := c.String(logFileFlag); path != "" {
		logFile = logging.NewFileAppender(path, 64)
		logger.AddAppender(logFile)
	}
	config.InitLoggingSettings(logger, c.Bool(debugFlag))
	if err := config.UpdateFileConfigLevel(conf); err != nil {
		return nil, err
	}

	if c.IsSet(thresholdFlag) {
		conf.ThresholdPx = c.Float64(thresholdFlag)
	}
	if c.IsSet(seedFlag) {
		conf.Estimator.Seed = c.Uint64(seedFlag)
	}
	if c.IsSet(trialsFlag) {
		conf.Estimator.Trials = c.Int(trialsFlag)
	}
	if c.IsSet(workersFlag) {
		conf.Estimator.Workers = c.Int(workersFlag)
	}
	if c.Bool(parallelFlag) {
		conf.Estimator.Workers = utils.ParallelFactor
	}
	if err := conf.Validate("flags"); err != nil {
		return nil, err
	}
	return &twoviewClient{c: c, conf: conf, logger: logger, logFile: logFile}, nil
}

func (c *twoviewClient) close() {
	if c.logFile != nil {
		goutils.UncheckedError(c.logFile.Close())
	}
}

func (c *twoviewClient) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSONFile(path string, v interface{}) error {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "error opening JSON file")
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return errors.Wrapf(err, "error parsing %q", path)
	}
	return nil
}

// matchesFile holds correspondences pts0[i] <-> pts1[i] as [x, y] pixel pairs.
type matchesFile struct {
	Pts0 [][2]float64 `json:"pts0"`
	Pts1 [][2]float64 `json:"pts1"`
}

func readMatches(path string) ([]r2.Point, []r2.Point, error) {
	var m matchesFile
	if err := readJSONFile(path, &m); err != nil {
		return nil, nil, err
	}
	toPoint := func(p [2]float64, _ int) r2.Point { return r2.Point{X: p[0], Y: p[1]} }
	return lo.Map(m.Pts0, toPoint), lo.Map(m.Pts1, toPoint), nil
}

// toHomogeneous reads [x, y] or [x, y, w] image observations.
func toHomogeneous(obs []float64) (r3.Vector, error) {
	switch len(obs) {
	case 2:
		return r3.Vector{X: obs[0], Y: obs[1], Z: 1}, nil
	case 3:
		return r3.Vector{X: obs[0], Y: obs[1], Z: obs[2]}, nil
	default:
		return r3.Vector{}, errors.Errorf("observation must have 2 or 3 coordinates, got %d", len(obs))
	}
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New("matrix has no entries")
	}
	cols := len(rows[0])
	if _, ragged := lo.Find(rows, func(row []float64) bool { return len(row) != cols }); ragged {
		return nil, errors.New("matrix rows have different lengths")
	}
	return mat.NewDense(len(rows), cols, lo.Flatten(rows)), nil
}

func rowsFromDense(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	return lo.Map(lo.Range(r), func(i, _ int) []float64 { return mat.Row(nil, i, m) })
}
