package cli

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
	"go.viam.com/twoview/transform"
)

var testIntrinsics = transform.PinholeCameraIntrinsics{
	Width:  640,
	Height: 480,
	Fx:     700,
	Fy:     700,
	Ppx:    320,
	Ppy:    240,
}

// twoCameras returns a camera at the origin and one translated along x, looking the same way.
func twoCameras(t *testing.T) (*mat.Dense, *mat.Dense) {
	t.Helper()
	k := testIntrinsics.GetCameraMatrix()
	p0, err := transform.ProjectionMatrix(k, linalg.Eye(3), r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	p1, err := transform.ProjectionMatrix(k, linalg.Eye(3), r3.Vector{X: -1, Y: 0.2, Z: 0.1})
	test.That(t, err, test.ShouldBeNil)
	return p0, p1
}

func writeMatches(t *testing.T, dir string, nInliers, nOutliers int) (string, []r3.Vector) {
	t.Helper()
	p0, p1 := twoCameras(t)
	rnd := rand.New(rand.NewSource(3))
	var m matchesFile
	var world []r3.Vector
	for i := 0; i < nInliers; i++ {
		pt := r3.Vector{X: rnd.Float64()*4 - 2, Y: rnd.Float64()*2 - 1, Z: rnd.Float64()*3 + 5}
		px0, err := transform.Project(p0, pt)
		test.That(t, err, test.ShouldBeNil)
		px1, err := transform.Project(p1, pt)
		test.That(t, err, test.ShouldBeNil)
		m.Pts0 = append(m.Pts0, [2]float64{px0.X, px0.Y})
		m.Pts1 = append(m.Pts1, [2]float64{px1.X, px1.Y})
		world = append(world, pt)
	}
	for i := 0; i < nOutliers; i++ {
		m.Pts0 = append(m.Pts0, [2]float64{rnd.Float64() * 640, rnd.Float64() * 480})
		m.Pts1 = append(m.Pts1, [2]float64{rnd.Float64() * 640, rnd.Float64() * 480})
	}
	return writeJSON(t, dir, "matches.json", m), world
}

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(dir, name)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)
	return path
}

func runApp(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"twoview"}, args...))
	t.Log(errOut.String())
	return out.Bytes(), err
}

func TestFundamentalMatrixAction(t *testing.T) {
	dir := t.TempDir()
	matches, _ := writeMatches(t, dir, 50, 10)
	plotPath := filepath.Join(dir, "inliers.png")

	out, err := runApp(t, "fmatrix", "--matches", matches, "--threshold", "1", "--seed", "11", "--plot", plotPath)
	test.That(t, err, test.ShouldBeNil)

	var res fundamentalOutput
	test.That(t, json.Unmarshal(out, &res), test.ShouldBeNil)
	test.That(t, res.Total, test.ShouldEqual, 60)
	test.That(t, res.Support, test.ShouldBeGreaterThanOrEqualTo, 50)
	test.That(t, len(res.Inliers), test.ShouldEqual, 60)
	test.That(t, len(res.F), test.ShouldEqual, 3)
	for i := 0; i < 50; i++ {
		test.That(t, res.Inliers[i], test.ShouldBeTrue)
	}
	info, err := os.Stat(plotPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)

	// same seed, same answer, with the seed coming from a config file instead
	cfg := filepath.Join(dir, "config.json5")
	test.That(t, os.WriteFile(cfg, []byte(`{estimator: {seed: 11}, threshold_px: 1, log_level: "warn"}`), 0o600), test.ShouldBeNil)
	again, err := runApp(t, "--config", cfg, "fmatrix", "--matches", matches)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(again), test.ShouldEqual, string(out))
}

func TestFundamentalMatrixActionParallel(t *testing.T) {
	dir := t.TempDir()
	matches, _ := writeMatches(t, dir, 30, 6)
	first, err := runApp(t, "fmatrix", "--matches", matches, "--parallel")
	test.That(t, err, test.ShouldBeNil)
	second, err := runApp(t, "fmatrix", "--matches", matches, "--parallel")
	test.That(t, err, test.ShouldBeNil)

	var a, b fundamentalOutput
	test.That(t, json.Unmarshal(first, &a), test.ShouldBeNil)
	test.That(t, json.Unmarshal(second, &b), test.ShouldBeNil)
	test.That(t, a.F, test.ShouldResemble, b.F)
	test.That(t, a.Inliers, test.ShouldResemble, b.Inliers)
	test.That(t, a.Support, test.ShouldBeGreaterThanOrEqualTo, 30)
}

func TestFundamentalMatrixActionTable(t *testing.T) {
	dir := t.TempDir()
	matches, _ := writeMatches(t, dir, 20, 0)
	logFile := filepath.Join(dir, "twoview.log")
	out, err := runApp(t, "--log-file", logFile, "fmatrix", "--matches", matches, "--table")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, "support")
	test.That(t, string(out), test.ShouldContainSubstring, "20/20")

	logs, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "best support: 20/20")
}

func TestSchemaAction(t *testing.T) {
	out, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, "threshold_px")
	test.That(t, string(out), test.ShouldContainSubstring, "sample_size")
}

func TestFundamentalMatrixActionErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := runApp(t, "fmatrix")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = runApp(t, "fmatrix", "--matches", filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	short := writeJSON(t, dir, "short.json", matchesFile{
		Pts0: [][2]float64{{1, 2}, {3, 4}},
		Pts1: [][2]float64{{1, 2}},
	})
	_, err = runApp(t, "fmatrix", "--matches", short)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "different lengths")

	matches, _ := writeMatches(t, dir, 20, 0)
	_, err = runApp(t, "fmatrix", "--matches", matches, "--workers=-3")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "workers")

	_, err = runApp(t, "--config", filepath.Join(dir, "missing.json5"), "fmatrix", "--matches", matches)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestComposeAction(t *testing.T) {
	dir := t.TempDir()
	p0, p1 := twoCameras(t)
	cameras := writeJSON(t, dir, "cameras.json", camerasFile{P0: rowsFromDense(p0), P1: rowsFromDense(p1)})

	out, err := runApp(t, "compose", "--cameras", cameras)
	test.That(t, err, test.ShouldBeNil)
	var res struct {
		F [][]float64 `json:"f"`
	}
	test.That(t, json.Unmarshal(out, &res), test.ShouldBeNil)
	f, err := denseFromRows(res.F)
	test.That(t, err, test.ShouldBeNil)
	expected, err := transform.ComposeFundamentalMatrix(p0, p1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.EqualApprox(f, expected, 1e-9), test.ShouldBeTrue)

	bad := writeJSON(t, dir, "bad.json", camerasFile{P0: rowsFromDense(p0), P1: [][]float64{{1, 2}, {3}}})
	_, err = runApp(t, "compose", "--cameras", bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "p1")

	notCamera := writeJSON(t, dir, "eye.json", camerasFile{P0: rowsFromDense(p0), P1: rowsFromDense(linalg.Eye(3))})
	_, err = runApp(t, "compose", "--cameras", notCamera)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTriangulateAction(t *testing.T) {
	dir := t.TempDir()
	p0, p1 := twoCameras(t)
	world := []r3.Vector{{X: 0.5, Y: -0.2, Z: 6}, {X: -1, Y: 0.4, Z: 7.5}}
	in := observationsFile{Projections: [][][]float64{rowsFromDense(p0), rowsFromDense(p1)}}
	for _, pt := range world {
		px0, err := transform.Project(p0, pt)
		test.That(t, err, test.ShouldBeNil)
		px1, err := transform.Project(p1, pt)
		test.That(t, err, test.ShouldBeNil)
		in.Points = append(in.Points, [][]float64{{px0.X, px0.Y}, {3 * px1.X, 3 * px1.Y, 3}})
	}
	obs := writeJSON(t, dir, "observations.json", in)

	out, err := runApp(t, "triangulate", "--observations", obs)
	test.That(t, err, test.ShouldBeNil)
	var res struct {
		Points []triangulatedPoint `json:"points"`
	}
	test.That(t, json.Unmarshal(out, &res), test.ShouldBeNil)
	test.That(t, len(res.Points), test.ShouldEqual, len(world))
	for i, pt := range res.Points {
		test.That(t, len(pt.Homogeneous), test.ShouldEqual, 4)
		test.That(t, pt.Euclidean, test.ShouldNotBeNil)
		test.That(t, pt.Euclidean.Sub(world[i]).Norm(), test.ShouldBeLessThan, 1e-6)
	}

	in.Points = [][][]float64{{{1, 2, 3, 4}, {1, 2}}}
	_, err = runApp(t, "triangulate", "--observations", writeJSON(t, dir, "bad.json", in))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "point 0")
}

func TestPoseAction(t *testing.T) {
	dir := t.TempDir()
	matches, _ := writeMatches(t, dir, 40, 5)
	intrinsics := writeJSON(t, dir, "intrinsics.json", testIntrinsics)

	out, err := runApp(t, "pose", "--matches", matches, "--intrinsics", intrinsics)
	test.That(t, err, test.ShouldBeNil)
	var res struct {
		Rotation    [][]float64 `json:"rotation"`
		Translation r3.Vector   `json:"translation"`
		Support     int         `json:"support"`
	}
	test.That(t, json.Unmarshal(out, &res), test.ShouldBeNil)
	rot, err := denseFromRows(res.Rotation)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.EqualApprox(rot, linalg.Eye(3), 1e-2), test.ShouldBeTrue)
	expected := r3.Vector{X: -1, Y: 0.2, Z: 0.1}.Normalize()
	test.That(t, res.Translation.Dot(expected), test.ShouldAlmostEqual, 1, 1e-2)
	test.That(t, res.Support, test.ShouldBeGreaterThanOrEqualTo, 40)

	out, err = runApp(t, "pose", "--matches", matches, "--intrinsics", intrinsics, "--table")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, "translation")
	test.That(t, string(out), test.ShouldContainSubstring, "support")

	_, err = runApp(t, "pose", "--matches", matches)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "intrinsic")
}
