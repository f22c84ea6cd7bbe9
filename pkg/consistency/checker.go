package consistency

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/observability"
)

// DefaultTolerance is the largest distance accepted between the primary
// raster and the rasterised interactive scene.
const DefaultTolerance = 0.25

// Mode selects how rasters are compared.
type Mode string

const (
	// ModePerceptual compares fingerprints.
	ModePerceptual Mode = "perceptual"
	// ModeExact requires identical pixels. The distance is 0 or 1.
	ModeExact Mode = "exact"
)

// Result is the outcome of one comparison.
type Result struct {
	Mode      Mode
	Distance  float64
	Tolerance float64
	Passed    bool
}

// Err returns a CONSISTENCY_FAILED error when the check failed.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	return errors.New(errors.ErrCodeConsistencyFailed,
		"%s distance %.4f exceeds tolerance %.4f", r.Mode, r.Distance, r.Tolerance)
}

func (r Result) String() string {
	status := "pass"
	if !r.Passed {
		status = "FAIL"
	}
	return fmt.Sprintf("%s: distance %.4f (tolerance %.4f) %s", r.Mode, r.Distance, r.Tolerance, status)
}

// Checker compares rasters against a tolerance.
type Checker struct {
	Tolerance float64
	Mode      Mode
}

// NewChecker returns a perceptual checker. A non-positive tolerance selects
// DefaultTolerance.
func NewChecker(tolerance float64) *Checker {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Checker{Tolerance: tolerance, Mode: ModePerceptual}
}

// Compare measures the distance between a and b. A distance above the
// tolerance is reported in the result, never as an error.
func (c *Checker) Compare(ctx context.Context, a, b image.Image) Result {
	res := Result{Mode: c.Mode, Tolerance: c.Tolerance}
	switch c.Mode {
	case ModeExact:
		res.Tolerance = 0
		if !Identical(a, b) {
			res.Distance = 1
		}
	default:
		res.Mode = ModePerceptual
		res.Distance = Distance(Hash(a), Hash(b))
	}
	res.Passed = res.Distance <= res.Tolerance
	observability.Render().OnCompare(ctx, res.Distance, res.Tolerance, res.Passed)
	return res
}

// CompareFiles loads two images and compares them.
func (c *Checker) CompareFiles(ctx context.Context, pathA, pathB string) (Result, error) {
	a, err := open(pathA)
	if err != nil {
		return Result{}, err
	}
	b, err := open(pathB)
	if err != nil {
		return Result{}, err
	}
	return c.Compare(ctx, a, b), nil
}

func open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return img, nil
}
