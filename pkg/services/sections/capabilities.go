package sections

import (
	"regexp"
	"strings"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

const (
	BucketDaily    = "daily"
	BucketIntraday = "intraday"
	BucketDelayed  = "delayed"
)

const (
	metricMarkerNoBiggestLiqLoss = "NO BIGGEST LIQ LOSS"
	metricMarkerReal             = "[REAL]"
)

var bucketTagRe = regexp.MustCompile(`(?i)(?:\[\s*|\bbucket\s*[=:]\s*)(daily|intraday|delayed)\b`)

// BucketOf returns the bucket tag found in a title, lower-cased, or "".
func BucketOf(title string) string {
	m := bucketTagRe.FindStringSubmatch(NormalizeTitle(title))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// MetricOf returns the metric variant marked in a title, or "".
func MetricOf(title string) string {
	upper := strings.ToUpper(NormalizeTitle(title))
	switch {
	case strings.Contains(upper, metricMarkerNoBiggestLiqLoss):
		return domain.MetricNoBiggestLiqLoss
	case strings.Contains(upper, metricMarkerReal):
		return domain.MetricReal
	}
	return ""
}

// ResolveCapabilities decides which view toggles make sense for a report.
// The result depends only on the set of sections, not their order.
func ResolveCapabilities(sections []*domain.TableSection) domain.ViewCapabilities {
	var caps domain.ViewCapabilities
	buckets := map[string]struct{}{}
	zonal := map[string]struct{}{}

	for _, s := range sections {
		if b := BucketOf(s.Title); b != "" {
			buckets[b] = struct{}{}
		}
		if z := s.ZonalMode(); z != "" {
			zonal[z] = struct{}{}
		}
		if MetricOf(s.Title) != "" {
			caps.SupportsMetricFiltering = true
		}
		if IsTpSlSource(s) {
			caps.SupportsTpSlFiltering = true
		}
	}

	caps.SupportsBucketFiltering = len(buckets) > 1
	caps.SupportsZonalFiltering = len(zonal) > 1
	return caps
}
