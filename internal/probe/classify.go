package probe

import (
	"time"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// Classify maps a measured latency to a discrete status. A nil latency is
// always a timeout. Pure; thresholds come from per-host configuration.
func Classify(latency *time.Duration, good, warn time.Duration) domain.Status {
	if latency == nil {
		return domain.StatusTimeout
	}
	switch {
	case *latency < good:
		return domain.StatusGood
	case *latency < warn:
		return domain.StatusWarning
	default:
		return domain.StatusError
	}
}
