package ranking

// Grade is an A-F letter bucket over a composite score, a read-only
// summary view. It never feeds back into CompositeScore or the rank
// ordering.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grade buckets r's composite score: score >= 3 is A, >= 1.5 is B,
// >= 0 is C, >= -1.5 is D, else F. The thresholds are calibrated to the
// composite formula's own scale (sharpe + 0.8*calmar + 1.2*stability +
// 1.5*robustness, minus penalties), not to a 0-100 percentage.
func (r Result) Grade() Grade {
	switch {
	case r.CompositeScore >= 3:
		return GradeA
	case r.CompositeScore >= 1.5:
		return GradeB
	case r.CompositeScore >= 0:
		return GradeC
	case r.CompositeScore >= -1.5:
		return GradeD
	default:
		return GradeF
	}
}
