package mediapager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortPreferenceRecord is the row of the sort_preferences table.
type sortPreferenceRecord struct {
	SourceID  string    `gorm:"column:source_id;primaryKey;size:191"`
	SortBy    string    `gorm:"column:sort_by;size:64;not null"`
	SortOrder int       `gorm:"column:sort_order;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sortPreferenceRecord) TableName() string {
	return "sort_preferences"
}

// GORMPreferenceStore keeps preferences in a SQL table through GORM. Observers are
// notified of changes made through this store only.
type GORMPreferenceStore struct {
	db          *gorm.DB
	broadcaster preferenceBroadcaster
}

func NewGORMPreferenceStore(db *gorm.DB) *GORMPreferenceStore {
	return &GORMPreferenceStore{
		db: db.Session(&gorm.Session{SkipDefaultTransaction: true}),
	}
}

// Migrate creates or updates the sort_preferences table.
func (s *GORMPreferenceStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&sortPreferenceRecord{}); err != nil {
		return fmt.Errorf("cannot migrate sort preferences: %w", err)
	}

	return nil
}

// GetPreference - implements PreferenceStore.
func (s *GORMPreferenceStore) GetPreference(ctx context.Context, sourceID string) (*SortSpec, error) {
	var rec sortPreferenceRecord

	err := s.db.WithContext(ctx).Where("source_id = ?", sourceID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("cannot load sort preference '%s': %w", sourceID, err)
	}

	spec := &SortSpec{
		SortBy:    rec.SortBy,
		SortOrder: SortOrder(rec.SortOrder),
	}
	if err = spec.validate(); err != nil {
		return nil, fmt.Errorf("stored sort preference '%s' is invalid: %w", sourceID, err)
	}

	return spec, nil
}

// SetPreference upserts spec for sourceID and notifies observers. A nil spec deletes the
// preference.
func (s *GORMPreferenceStore) SetPreference(ctx context.Context, sourceID string, spec *SortSpec) error {
	if err := spec.validate(); err != nil {
		return fmt.Errorf("cannot set preference: %w", err)
	}

	db := s.db.WithContext(ctx)

	var err error
	if spec == nil {
		err = db.Where("source_id = ?", sourceID).Delete(&sortPreferenceRecord{}).Error
	} else {
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sort_by", "sort_order", "updated_at"}),
		}).Create(&sortPreferenceRecord{
			SourceID:  sourceID,
			SortBy:    spec.SortBy,
			SortOrder: int(spec.SortOrder),
		}).Error
	}
	if err != nil {
		return fmt.Errorf("cannot store sort preference '%s': %w", sourceID, err)
	}

	s.broadcaster.publish(sourceID, spec)

	return nil
}

// ObservePreferenceChanges - implements PreferenceStore.
func (s *GORMPreferenceStore) ObservePreferenceChanges(sourceID string) (<-chan *SortSpec, func()) {
	return s.broadcaster.subscribe(sourceID)
}

var _ PreferenceStore = (*GORMPreferenceStore)(nil)
