// Package record manages testing records and keeps their weighted results in
// step with their raw results.
package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coalhub/model"
	"coalhub/service/events"
	"coalhub/service/metrics"
	"coalhub/service/quality"
	"coalhub/service/store"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// ErrNoResults is returned when a record is created without results.
var ErrNoResults = errors.New("a testing record needs at least one result")

// Input is a new testing record as submitted through the public form.
type Input struct {
	CustomerName string             `json:"customerName" binding:"max=128"`
	Company      string             `json:"company" binding:"max=256"`
	Phone        string             `json:"phone" binding:"max=32"`
	Email        string             `json:"email" binding:"omitempty,email"`
	CoalType     string             `json:"coalType" binding:"max=64"`
	Origin       string             `json:"origin" binding:"max=256"`
	SampleDate   string             `json:"sampleDate" binding:"max=32"`
	Standards    []string           `json:"standards" binding:"max=32"`
	Note         string             `json:"note" binding:"max=4096"`
	Results      []model.TestResult `json:"results" binding:"required,min=1,dive"`
}

// Patch changes some fields of a record. Nil fields are left alone. A non-nil
// Results replaces the results in full, an empty slice included.
type Patch struct {
	CustomerName *string            `json:"customerName" binding:"omitempty,max=128"`
	Company      *string            `json:"company" binding:"omitempty,max=256"`
	Phone        *string            `json:"phone" binding:"omitempty,max=32"`
	Email        *string            `json:"email" binding:"omitempty,email"`
	CoalType     *string            `json:"coalType" binding:"omitempty,max=64"`
	Origin       *string            `json:"origin" binding:"omitempty,max=256"`
	SampleDate   *string            `json:"sampleDate" binding:"omitempty,max=32"`
	Standards    []string           `json:"standards" binding:"omitempty,max=32"`
	Note         *string            `json:"note" binding:"omitempty,max=4096"`
	Results      []model.TestResult `json:"results" binding:"omitempty,dive"`
}

// Files removes stored attachment objects.
type Files interface {
	Delete(ctx context.Context, key string) error
}

// Service is the only writer of testing records. Read-modify-write operations
// on the same record are serialized; different records proceed in parallel.
type Service struct {
	store     store.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	log       *log.Entry
	files     Files

	locks keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where lifecycle events go. The default drops them.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics sets the collectors updated by the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithFiles sets where the attachment objects of deleted records are
// removed from. Without it they stay in storage.
func WithFiles(f Files) Option {
	return func(s *Service) { s.files = f }
}

// WithClock sets the time source of record timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the log entry of the service.
func WithLogger(l *log.Entry) Option {
	return func(s *Service) { s.log = l }
}

// New creates a record service on st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:     st,
		publisher: events.Noop{},
		clock:     clockwork.NewRealClock(),
		log:       log.WithField("component", "record"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new record with its weighted results.
// Nothing is stored when the results are invalid.
func (s *Service) Create(ctx context.Context, in Input) (*model.TestingRecord, error) {
	if len(in.Results) == 0 {
		return nil, ErrNoResults
	}
	weighted, err := s.compute(in.Results)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := &model.TestingRecord{
		CustomerName:    in.CustomerName,
		Company:         in.Company,
		Phone:           in.Phone,
		Email:           in.Email,
		CoalType:        in.CoalType,
		Origin:          in.Origin,
		SampleDate:      in.SampleDate,
		Standards:       append([]string(nil), in.Standards...),
		Note:            in.Note,
		Results:         append([]model.TestResult(nil), in.Results...),
		WeightedResults: weighted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("create testing record: %w", err)
	}

	s.count("create")
	s.log.WithField("id", rec.ID).WithField("results", len(rec.Results)).Info("Testing record created")
	s.publish(ctx, events.RecordCreated, rec)
	return rec, nil
}

// Get returns the record with the given id.
func (s *Service) Get(ctx context.Context, id uint64) (*model.TestingRecord, error) {
	return s.store.Get(ctx, id)
}

// List returns the records matching filter, ordered by id.
func (s *Service) List(ctx context.Context, filter store.Filter) ([]model.TestingRecord, error) {
	records, err := s.store.ListBy(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.TestingRecord{}
	}
	return records, nil
}

// Update applies p to the record. When p replaces the results the weighted
// results are recomputed from the new results; if they are invalid the stored
// record is left unchanged.
func (s *Service) Update(ctx context.Context, id uint64, p Patch) (*model.TestingRecord, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Results != nil {
		weighted, err := s.compute(p.Results)
		if err != nil {
			return nil, err
		}
		rec.Results = append([]model.TestResult{}, p.Results...)
		rec.WeightedResults = weighted
	}
	setString(&rec.CustomerName, p.CustomerName)
	setString(&rec.Company, p.Company)
	setString(&rec.Phone, p.Phone)
	setString(&rec.Email, p.Email)
	setString(&rec.CoalType, p.CoalType)
	setString(&rec.Origin, p.Origin)
	setString(&rec.SampleDate, p.SampleDate)
	setString(&rec.Note, p.Note)
	if p.Standards != nil {
		rec.Standards = append([]string{}, p.Standards...)
	}
	rec.UpdatedAt = s.now()

	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("update testing record %d: %w", id, err)
	}

	s.count("update")
	s.log.WithField("id", id).WithField("results_replaced", p.Results != nil).Info("Testing record updated")
	s.publish(ctx, events.RecordUpdated, rec)
	return rec, nil
}

// ReplaceResults replaces all results of the record and recomputes its
// weighted results.
func (s *Service) ReplaceResults(ctx context.Context, id uint64, results []model.TestResult) (*model.TestingRecord, error) {
	if results == nil {
		results = []model.TestResult{}
	}
	return s.Update(ctx, id, Patch{Results: results})
}

// Recompute recalculates the weighted results from the current results and
// stores them. No other field changes, updatedAt included.
func (s *Service) Recompute(ctx context.Context, id uint64) (map[string]float64, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	weighted, err := s.compute(rec.Results)
	if err != nil {
		return nil, err
	}
	rec.WeightedResults = weighted
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("recompute testing record %d: %w", id, err)
	}

	s.count("recompute")
	s.publish(ctx, events.RecordRecomputed, rec)
	return weighted, nil
}

// Delete removes the record and then its attachment objects. Failing to
// remove an object is logged and does not fail the deletion.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.files != nil {
		for _, a := range rec.Attachments {
			if err := s.files.Delete(ctx, model.AttachmentKey(id, a.ID)); err != nil {
				s.log.WithError(err).WithField("id", id).WithField("attachment", a.ID).
					Warn("Failed to remove attachment")
			}
		}
	}

	s.count("delete")
	s.log.WithField("id", id).Info("Testing record deleted")
	s.publish(ctx, events.RecordDeleted, &model.TestingRecord{ID: id})
	return nil
}

// AddAttachment appends the metadata of an uploaded file to the record. The
// file itself must already be stored.
func (s *Service) AddAttachment(ctx context.Context, id uint64, a model.Attachment) (*model.TestingRecord, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if a.UploadedAt.IsZero() {
		a.UploadedAt = now
	}
	rec.Attachments = append(rec.Attachments, a)
	rec.UpdatedAt = now
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("attach to testing record %d: %w", id, err)
	}

	s.count("attach")
	s.publish(ctx, events.RecordUpdated, rec)
	return rec, nil
}

func (s *Service) compute(results []model.TestResult) (map[string]float64, error) {
	start := s.clock.Now()
	weighted, err := quality.ComputeWeightedAverages(results)
	if s.metrics != nil {
		s.metrics.AggregationDuration.Observe(s.clock.Since(start).Seconds())
		if err != nil {
			s.metrics.AggregationErrors.Inc()
		}
	}
	return weighted, err
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Service) count(operation string) {
	if s.metrics != nil {
		s.metrics.Records.WithLabelValues(operation).Inc()
	}
}

// publish never fails the operation; a lost event is only logged.
func (s *Service) publish(ctx context.Context, typ string, rec *model.TestingRecord) {
	event := events.Event{Type: typ, RecordID: rec.ID, OccurredAt: s.now()}
	if typ != events.RecordDeleted {
		event.Record = rec.Clone()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithField("id", rec.ID).WithField("event", typ).Warn("Failed to publish event")
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
