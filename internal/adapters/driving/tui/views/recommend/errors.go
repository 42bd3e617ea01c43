package recommend

import "errors"

// ErrNoRecommendationService indicates that no recommendation service was provided.
var ErrNoRecommendationService = errors.New("recommendation service is required")
