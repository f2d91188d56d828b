package sections

import (
	"fmt"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

// ApplyBucketMode keeps the sections tagged with the bucket and the untagged
// ones shared by every bucket.
func ApplyBucketMode(sections []*domain.TableSection, bucket string) ([]*domain.TableSection, error) {
	switch bucket {
	case domain.ModeAll:
		return sections, nil
	case BucketDaily, BucketIntraday, BucketDelayed:
	default:
		return nil, fmt.Errorf("%w: bucket %q", ErrUnknownMode, bucket)
	}
	return keepTagged(sections, bucket, func(s *domain.TableSection) string { return BucketOf(s.Title) }), nil
}

// ApplyMetricMode keeps the sections computed with the given metric variant
// and the unmarked ones.
func ApplyMetricMode(sections []*domain.TableSection, metric string) ([]*domain.TableSection, error) {
	switch metric {
	case domain.ModeAll:
		return sections, nil
	case domain.MetricReal, domain.MetricNoBiggestLiqLoss:
	default:
		return nil, fmt.Errorf("%w: metric %q", ErrUnknownMode, metric)
	}
	return keepTagged(sections, metric, func(s *domain.TableSection) string { return MetricOf(s.Title) }), nil
}

// ApplyZonalMode filters on the zonal mode the backend attached as metadata.
// Zonal values are opaque, so any non-empty value is accepted.
func ApplyZonalMode(sections []*domain.TableSection, zonal string) ([]*domain.TableSection, error) {
	switch zonal {
	case domain.ModeAll:
		return sections, nil
	case "":
		return nil, fmt.Errorf("%w: empty zonal mode", ErrUnknownMode)
	}
	return keepTagged(sections, zonal, (*domain.TableSection).ZonalMode), nil
}

func keepTagged(sections []*domain.TableSection, want string, tag func(*domain.TableSection) string) []*domain.TableSection {
	out := make([]*domain.TableSection, 0, len(sections))
	for _, s := range sections {
		if t := tag(s); t == "" || t == want {
			out = append(out, s)
		}
	}
	return out
}
