package analyzer

import "fmt"

// NewEstimator creates an estimator based on the specified variant.
func NewEstimator(variant string) (Estimator, error) {
	switch variant {
	case "keyframe", "":
		return NewKeyframeEstimator(), nil
	case "frame-diff":
		return NewFrameDiffEstimator(), nil
	case "optical-flow":
		return nil, fmt.Errorf("optical-flow estimator not yet implemented")
	default:
		return nil, fmt.Errorf("unknown estimator variant: %s", variant)
	}
}
