package matching

// Confidence calibration policy. These breakpoints are fixed policy
// constants, not fitted to data; keeping them named in one place means a
// recalibration is a one-line change and downstream systems can reproduce
// scores exactly.
const (
	// Title exact tier.
	confTitleCorpusCaseExact = 0.98
	confTitleCorpusFolded    = 0.95
	confTitleCuratedExact    = 0.95

	// Title fuzzy-on-corpus tier. Confidence rises linearly with the raw
	// score above the floor, capped below the exact band.
	titleCorpusFloor        = 0.75
	titleCorpusGenericFloor = 0.90
	confTitleCorpusMin      = 0.75
	confTitleCorpusMax      = 0.92

	// Title fuzzy-on-curated tier.
	titleCuratedFloor   = 0.60
	confTitleCuratedMin = 0.75
	confTitleCuratedMax = 0.95

	// Department tiers.
	confDeptExact       = 0.95
	deptStrictFloor     = 0.90
	confDeptStrictMin   = 0.85
	confDeptStrictMax   = 0.95
	deptLenientFloor    = 0.70
	confDeptLenientMin  = 0.70
	confDeptLenientMax  = 0.85
	deptPartialFloor    = 0.60
	confDeptPartialMin  = 0.60
	confDeptPartialMax  = 0.70

	// When only one side of a lenient-pass pair carries domain signal, the
	// match is capped rather than rejected.
	deptPartialSignalCeiling = 0.80
)

// scaleConfidence maps a raw score in [floor,1] linearly onto [lo,hi].
func scaleConfidence(score, floor, lo, hi float64) float64 {
	if floor >= 1.0 {
		return lo
	}
	c := lo + (hi-lo)*(score-floor)/(1.0-floor)
	if c < lo {
		return lo
	}
	if c > hi {
		return hi
	}
	return c
}

// titleCorpusConfidence maps a fuzzy corpus score into its confidence band:
// 0.75 + 0.17*(score-0.75)/0.25, clamped to [0.75, 0.92].
func titleCorpusConfidence(score float64) float64 {
	c := confTitleCorpusMin + 0.17*(score-titleCorpusFloor)/0.25
	if c < confTitleCorpusMin {
		return confTitleCorpusMin
	}
	if c > confTitleCorpusMax {
		return confTitleCorpusMax
	}
	return c
}
