package regression

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/arloliu/pixo/format"
)

//go:embed baselines.json
var baselineFixture []byte

// Baseline is the stored expectation for one (format, quality) pair. The
// ratio is optimizedSize / originalSize, so lower is better, and may
// legitimately differ per quality level.
type Baseline struct {
	ExpectedRatio float64 `json:"expected_ratio"`
	ToleranceAbs  float64 `json:"tolerance_abs"`
}

// Comparison is the outcome of comparing one observed ratio against its
// baseline. Delta is observed minus expected, signed, so callers can tell a
// regression (worse compression) from an improvement that drifted past
// tolerance.
type Comparison struct {
	Pass  bool
	Delta float64
}

// MissingBaselineError reports that no baseline exists for the requested
// pair. It is a soft condition: the comparison is inconclusive, nothing
// more.
type MissingBaselineError struct {
	Format  format.Format
	Quality int
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("no baseline for %s at quality %d", e.Format, e.Quality)
}

type baselineKey struct {
	format  format.Format
	quality int
}

// Comparator holds an immutable baseline table.
type Comparator struct {
	baselines map[baselineKey]Baseline
}

// NewComparator loads the built-in baseline fixture.
func NewComparator() *Comparator {
	cmp, err := NewComparatorFromJSON(baselineFixture)
	if err != nil {
		// The embedded fixture is validated by tests; failing to parse it
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("built-in baseline fixture is invalid: %v", err))
	}

	return cmp
}

// NewComparatorFromJSON builds a comparator from fixture data shaped as
// {"png": {"20": {"expected_ratio": 0.5, "tolerance_abs": 0.1}}}.
func NewComparatorFromJSON(data []byte) (*Comparator, error) {
	var raw map[string]map[string]Baseline
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse baseline fixture: %w", err)
	}

	baselines := make(map[baselineKey]Baseline)
	for token, byQuality := range raw {
		f := format.Parse(token)
		if f == format.Unknown {
			return nil, fmt.Errorf("baseline fixture references unknown format %q", token)
		}

		for qstr, baseline := range byQuality {
			q, err := strconv.Atoi(qstr)
			if err != nil {
				return nil, fmt.Errorf("baseline quality %q for %s is not an integer", qstr, f)
			}

			baselines[baselineKey{format: f, quality: q}] = baseline
		}
	}

	return &Comparator{baselines: baselines}, nil
}

var (
	defaultComparator *Comparator
	defaultOnce       sync.Once
)

// Default returns the process-wide comparator over the built-in fixture,
// loading it on first use.
func Default() *Comparator {
	defaultOnce.Do(func() {
		defaultComparator = NewComparator()
	})

	return defaultComparator
}

// Compare checks an observed compression ratio against the stored baseline
// for the pair. Returns *MissingBaselineError when no baseline exists.
func (c *Comparator) Compare(observedRatio float64, f format.Format, quality int) (Comparison, error) {
	baseline, ok := c.baselines[baselineKey{format: f, quality: quality}]
	if !ok {
		return Comparison{}, &MissingBaselineError{Format: f, Quality: quality}
	}

	delta := observedRatio - baseline.ExpectedRatio

	return Comparison{
		Pass:  math.Abs(delta) <= baseline.ToleranceAbs,
		Delta: delta,
	}, nil
}

// Baseline returns the stored baseline for the pair, if present.
func (c *Comparator) Baseline(f format.Format, quality int) (Baseline, bool) {
	baseline, ok := c.baselines[baselineKey{format: f, quality: quality}]
	return baseline, ok
}
