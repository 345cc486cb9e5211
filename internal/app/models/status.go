package models

// Status classifies a section fill ratio.
type Status string

const (
	// StatusOpen means the section has comfortable headroom
	StatusOpen Status = "OPEN"
	// StatusNear means the section is at 75% capacity or more
	StatusNear Status = "NEAR"
	// StatusFull means the section is at or over capacity
	StatusFull Status = "FULL"
)

// Classification thresholds. Over-enrollment (ratio > 1.0) is still FULL.
const (
	fullThreshold = 1.0
	nearThreshold = 0.75
)

// ClassifyFill maps a fill ratio to a Status. The ingestor stores the result
// and the dashboard export recomputes it for display banding; both must use
// this function so they never disagree.
func ClassifyFill(ratio float64) Status {
	switch {
	case ratio >= fullThreshold:
		return StatusFull
	case ratio >= nearThreshold:
		return StatusNear
	default:
		return StatusOpen
	}
}

// FillRatio computes enrollment/capacity, returning 0 for zero capacity.
func FillRatio(enrollment, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return float64(enrollment) / float64(capacity)
}
