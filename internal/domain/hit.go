package domain

import "time"

// Hit is a single served request as persisted by the hit store.
type Hit struct {
	ID         int64
	Method     string
	Path       string
	Status     int
	Bytes      int64
	DurationMs int64
	RemoteAddr string
	ServedAt   time.Time
}

// HitSummary aggregates hits by path and status.
type HitSummary struct {
	Path       string
	Status     int
	Count      int64
	TotalBytes int64
	LastSeen   time.Time
}
