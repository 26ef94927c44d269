// Package store persists testing records.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"coalhub/model"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("testing record not found")

// Store is a repository of testing records.
//
// Implementations are safe for concurrent use. Records passed in and handed
// out are copies; callers may mutate them freely.
type Store interface {
	// Get returns the record with the given id.
	Get(ctx context.Context, id uint64) (*model.TestingRecord, error)
	// Put stores rec, replacing any record with the same id. A zero id is
	// replaced by the next free id.
	Put(ctx context.Context, rec *model.TestingRecord) error
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id uint64) error
	// ListBy returns the records matching filter ordered by id.
	ListBy(ctx context.Context, filter Filter) ([]model.TestingRecord, error)
	// Close releases the backend connection.
	Close() error
}

// Filter selects records in ListBy. Zero fields match everything.
type Filter struct {
	Company  string
	CoalType string
	// ItemCode selects records with at least one result for the code.
	ItemCode string
	Limit    int
	Offset   int
}

// Match reports whether rec satisfies the filter, ignoring paging.
func (f Filter) Match(rec *model.TestingRecord) bool {
	if f.Company != "" && !strings.EqualFold(f.Company, rec.Company) {
		return false
	}
	if f.CoalType != "" && !strings.EqualFold(f.CoalType, rec.CoalType) {
		return false
	}
	if f.ItemCode != "" {
		for _, r := range rec.Results {
			if r.ItemCode == f.ItemCode {
				return true
			}
		}
		return false
	}
	return true
}

// page sorts records by id and applies offset and limit.
func (f Filter) page(records []model.TestingRecord) []model.TestingRecord {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []model.TestingRecord{}
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}
