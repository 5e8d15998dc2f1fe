package layout

// Config holds the reconstruction heuristics. The defaults are tuned
// empirically on typical prose and table layouts; treat them as starting
// points rather than guaranteed-correct thresholds.
type Config struct {
	// LineTolerance is the maximum vertical offset, in screen pixels,
	// between runs on the same line.
	LineTolerance float64

	// GapFontFactor and MinHorizontalGap bound the horizontal gap that
	// splits a vertical band into separate lines (table cells). The split
	// threshold is max(GapFontFactor*fontSize, MinHorizontalGap).
	GapFontFactor    float64
	MinHorizontalGap float64

	// ColumnBuckets is the horizontal histogram resolution used for column
	// detection.
	ColumnBuckets int

	// GapScoreRatio is the fraction of the maximum bucket score at or below
	// which a bucket counts as empty for column-gap purposes.
	GapScoreRatio float64

	// MinGapFraction is the minimum gap width as a fraction of page width.
	MinGapFraction float64

	// SearchLow and SearchHigh bound the horizontal region, as fractions of
	// page width, inside which a column gap is searched for.
	SearchLow  float64
	SearchHigh float64

	// MinSideBands is the minimum number of distinct vertical bands required
	// on each side of a candidate gap.
	MinSideBands int

	// ParaGapFactor is the maximum vertical gap between consecutive lines of
	// one paragraph, as a multiple of the previous line's height.
	ParaGapFactor float64

	// ParaIndentFactor is the maximum left-edge difference between lines of
	// one paragraph, as a multiple of line height.
	ParaIndentFactor float64

	// ParaWidthRatio is the maximum width difference between lines of one
	// paragraph, as a fraction of the larger width.
	ParaWidthRatio float64

	// FontSizeTolerance is the maximum dominant-font-size difference between
	// lines of one paragraph.
	FontSizeTolerance float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		LineTolerance:     3.0,
		GapFontFactor:     0.5,
		MinHorizontalGap:  5.0,
		ColumnBuckets:     60,
		GapScoreRatio:     0.15,
		MinGapFraction:    0.03,
		SearchLow:         0.30,
		SearchHigh:        0.70,
		MinSideBands:      2,
		ParaGapFactor:     1.5,
		ParaIndentFactor:  1.5,
		ParaWidthRatio:    0.5,
		FontSizeTolerance: 0.5,
	}
}
