package store

import (
	"context"

	"coalhub/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Gorm stores records in a SQL database through gorm.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

// NewGorm migrates the testing record table and returns a store on db.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&model.TestingRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate testing records")
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Get(ctx context.Context, id uint64) (*model.TestingRecord, error) {
	var rec model.TestingRecord
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get testing record %d", id)
	}
	return &rec, nil
}

func (g *Gorm) Put(ctx context.Context, rec *model.TestingRecord) error {
	db := g.db.WithContext(ctx)
	if rec.WeightedResults != nil {
		return save(db, rec)
	}

	// gorm skips the serializer for a nil map and the driver rejects the raw
	// map, so absent weighted results are written as an explicit NULL.
	return db.Transaction(func(tx *gorm.DB) error {
		if err := save(tx.Omit("weighted_results"), rec); err != nil {
			return err
		}
		err := tx.Model(&model.TestingRecord{}).
			Where("id = ?", rec.ID).
			UpdateColumn("weighted_results", gorm.Expr("NULL")).Error
		return errors.Wrapf(err, "clear weighted results of testing record %d", rec.ID)
	})
}

func save(db *gorm.DB, rec *model.TestingRecord) error {
	if rec.ID == 0 {
		return errors.Wrap(db.Create(rec).Error, "create testing record")
	}
	return errors.Wrapf(db.Save(rec).Error, "save testing record %d", rec.ID)
}

func (g *Gorm) Delete(ctx context.Context, id uint64) error {
	result := g.db.WithContext(ctx).Delete(&model.TestingRecord{}, id)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "delete testing record %d", id)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) ListBy(ctx context.Context, filter Filter) ([]model.TestingRecord, error) {
	q := g.db.WithContext(ctx).Model(&model.TestingRecord{}).Order("id")
	if filter.Company != "" {
		q = q.Where("LOWER(company) = LOWER(?)", filter.Company)
	}
	if filter.CoalType != "" {
		q = q.Where("LOWER(coal_type) = LOWER(?)", filter.CoalType)
	}

	// Results are stored as JSON, so the item code filter and paging that
	// depends on it run in Go.
	if filter.ItemCode == "" {
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}

	var records []model.TestingRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "list testing records")
	}
	if filter.ItemCode == "" {
		return records, nil
	}

	matched := records[:0]
	for i := range records {
		if filter.Match(&records[i]) {
			matched = append(matched, records[i])
		}
	}
	return filter.page(matched), nil
}

func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
