package billing

// Credit cost of one training run. The estimate is a pure function of the
// uploaded image count so that the same photo set always prices the same,
// no matter when or how often the status endpoints recompute it.
const (
	baseTrainingCredits = 20
	creditsPerImage     = 2
)

// EstimateTrainingCredits returns the credit cost for training a model
// on imageCount photos
func EstimateTrainingCredits(imageCount int) int {
	if imageCount < 0 {
		imageCount = 0
	}
	return baseTrainingCredits + creditsPerImage*imageCount
}
