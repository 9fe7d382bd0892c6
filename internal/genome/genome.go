// Package genome defines the parameterized strategy genome: a tagged
// family plus bounded integer parameters, validated centrally.
package genome

import (
	"fmt"
	"sort"

	"github.com/kestrel-quant/stratcore/internal/xerrors"
)

// Family enumerates the three supported strategy parameter families.
type Family string

const (
	MovingAverage Family = "moving_average"
	RSI           Family = "rsi"
	Breakout      Family = "breakout"
)

// Bound is an inclusive integer interval [Low, High].
type Bound struct {
	Low, High int
}

func (b Bound) contains(v int) bool { return v >= b.Low && v <= b.High }

// Bounds gives every family's parameter names and their valid domain.
var Bounds = map[Family]map[string]Bound{
	MovingAverage: {
		"short": {2, 50},
		"long":  {10, 200},
	},
	RSI: {
		"period":     {5, 30},
		"overbought": {60, 90},
		"oversold":   {10, 40},
	},
	Breakout: {
		"window": {5, 60},
	},
}

// Families lists the valid families in a fixed, deterministic order,
// used wherever a caller needs to enumerate or uniformly choose a family.
var Families = []Family{MovingAverage, RSI, Breakout}

// Genome is a tagged record: a family and that family's integer
// parameters.
type Genome struct {
	Family Family
	Params map[string]int
}

// Clone returns a deep copy; Genomes are passed by value semantics
// everywhere else but the Params map needs an explicit copy.
func (g Genome) Clone() Genome {
	p := make(map[string]int, len(g.Params))
	for k, v := range g.Params {
		p[k] = v
	}
	return Genome{Family: g.Family, Params: p}
}

// ParamNames returns family's parameter names in a fixed, deterministic
// (alphabetical) order, used wherever a caller must iterate a genome's
// parameters in a reproducible order for seeded-RNG determinism.
func ParamNames(family Family) []string {
	bounds := Bounds[family]
	names := make([]string, 0, len(bounds))
	for name := range bounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that g names a known family, that every required
// parameter is present and within bounds, and that the short/long
// invariant holds for moving_average.
func Validate(g Genome) error {
	bounds, ok := Bounds[g.Family]
	if !ok {
		return xerrors.New(xerrors.InvalidArgument,
			fmt.Sprintf("unknown genome family %q", g.Family)).WithField("type")
	}
	names := make([]string, 0, len(bounds))
	for name := range bounds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := bounds[name]
		v, present := g.Params[name]
		if !present {
			return xerrors.New(xerrors.InvalidArgument,
				fmt.Sprintf("genome missing required parameter %q", name)).WithField(name)
		}
		if !b.contains(v) {
			return xerrors.New(xerrors.InvalidArgument,
				fmt.Sprintf("genome[%q] = %d out of bounds [%d, %d]", name, v, b.Low, b.High)).WithField(name)
		}
	}
	if g.Family == MovingAverage && g.Params["short"] >= g.Params["long"] {
		return xerrors.New(xerrors.InvalidArgument,
			"moving_average genome requires short < long").WithField("short")
	}
	return nil
}
