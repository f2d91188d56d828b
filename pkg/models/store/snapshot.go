package store

import "time"

// ReportSnapshot is a raw report document as fetched from upstream.
type ReportSnapshot struct {
	ID             string
	ReportID       string
	Kind           string
	Title          string
	GeneratedAtUTC string
	FetchedAt      time.Time
	Payload        []byte
}
