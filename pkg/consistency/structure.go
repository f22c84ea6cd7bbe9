package consistency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/interactive"
	"github.com/matzehuels/starbridge/pkg/ir"
)

// Mismatch is one group whose counts disagree.
type Mismatch struct {
	Group    string
	Recorded int
	Expected int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: recorded %d, expected %d", m.Group, m.Recorded, m.Expected)
}

// CompareCounts returns the groups whose counts differ, sorted by group.
// A group missing from one side counts as zero there.
func CompareCounts(recorded, expected map[string]int) []Mismatch {
	var out []Mismatch
	for g, want := range expected {
		if got := recorded[g]; got != want {
			out = append(out, Mismatch{Group: g, Recorded: got, Expected: want})
		}
	}
	for g, got := range recorded {
		if _, ok := expected[g]; !ok && got != 0 {
			out = append(out, Mismatch{Group: g, Recorded: got})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

// CheckStructure verifies that rec holds exactly expected elements per group.
// Point clusters count points, line bundles count segments and every other
// command counts one.
func CheckStructure(rec *ir.Recording, expected map[string]int) error {
	return mismatchError(CompareCounts(rec.ElementCounts(), expected))
}

// CheckReplay verifies that fig shows every group of rec. For a full render
// the per-group counts must also match; a decimated render only has to keep
// the groups.
func CheckReplay(rec *ir.Recording, fig *interactive.Figure) error {
	return mismatchError(ReplayMismatches(rec, fig))
}

// ReplayMismatches lists the groups CheckReplay would reject. Recorded holds
// the figure's count and Expected the recording's.
func ReplayMismatches(rec *ir.Recording, fig *interactive.Figure) []Mismatch {
	recorded := rec.ElementCounts()
	shown := fig.ElementCounts()
	if fig.Mode == interactive.ModeFull {
		return CompareCounts(shown, recorded)
	}
	var missing []Mismatch
	for g, n := range recorded {
		if _, ok := shown[g]; !ok {
			missing = append(missing, Mismatch{Group: g, Expected: n})
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Group < missing[j].Group })
	return missing
}

func mismatchError(ms []Mismatch) error {
	if len(ms) == 0 {
		return nil
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return errors.New(errors.ErrCodeStructureMismatch, "%d group(s) differ: %s", len(ms), strings.Join(parts, "; "))
}
