package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rtao-god/solsignal-reports/pkg/models/api"
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/models/store"
)

// MapDomainReportToSnapshot stores the document in its wire shape so that
// a snapshot decodes exactly like a fresh upstream response.
func MapDomainReportToSnapshot(doc *domain.ReportDocument, fetchedAt time.Time) (*store.ReportSnapshot, error) {
	payload, err := json.Marshal(MapDomainReportToAPI(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode report %s: %w", doc.ID, err)
	}

	return &store.ReportSnapshot{
		ReportID:       doc.ID,
		Kind:           doc.Kind,
		Title:          doc.Title,
		GeneratedAtUTC: doc.GeneratedAtUTC,
		FetchedAt:      fetchedAt.UTC(),
		Payload:        payload,
	}, nil
}

func MapSnapshotToDomainReport(s *store.ReportSnapshot) (*domain.ReportDocument, error) {
	var doc api.ReportDocument
	if err := json.Unmarshal(s.Payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.ID, err)
	}
	if doc.Kind == "" {
		doc.Kind = s.Kind
	}
	return MapAPIReportToDomain(&doc)
}
