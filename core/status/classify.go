package status

import "strings"

// FailureCategory is the actionable classification of a training failure
type FailureCategory string

const (
	CategoryImagePreparation FailureCategory = "image_preparation"
	CategoryPermission       FailureCategory = "permission"
	CategoryNamingConflict   FailureCategory = "naming_conflict"
	CategoryInitialization   FailureCategory = "initialization"
	CategoryGeneric          FailureCategory = "training"
)

// UploadPhase reports whether the category indicates a failure that
// happened strictly after training succeeded, while pushing weights to
// the registry. Permission errors come from hub token scope; naming
// conflicts from a pre-existing hub repository.
func (c FailureCategory) UploadPhase() bool {
	return c == CategoryPermission || c == CategoryNamingConflict
}

// classificationRules map free-text error messages from the provider and
// the upload pipeline onto failure categories. The vocabulary on the
// other side is not a stable API, so matching is ordered, lowercase
// substring, best effort; first match wins and callers always surface
// the raw text next to the category.
var classificationRules = []struct {
	substrings []string
	category   FailureCategory
	stage      string
}{
	{
		substrings: []string{"zip", "image packag", "preparing images"},
		category:   CategoryImagePreparation,
		stage:      "Training failed while preparing your photos",
	},
	{
		substrings: []string{"permission", "403", "forbidden"},
		category:   CategoryPermission,
		stage:      "Upload failed: registry permission denied",
	},
	{
		substrings: []string{"already exists", "409", "conflict"},
		category:   CategoryNamingConflict,
		stage:      "Upload failed: model name already taken",
	},
	{
		substrings: []string{"initializing"},
		category:   CategoryInitialization,
		stage:      "Training failed during initialization",
	},
}

// Classify maps raw error text to a failure category and a
// human-readable stage description
func Classify(errText string) (FailureCategory, string) {
	lower := strings.ToLower(errText)
	for _, rule := range classificationRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.category, rule.stage
			}
		}
	}
	return CategoryGeneric, "Training failed"
}
