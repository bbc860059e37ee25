package guideline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/admission-review/pkg/rules"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProfileNotFound  = errors.New("guideline profile not found")
	ErrProfilesDisabled = errors.New("guideline profiles are not configured")
)

// Profile is a named set of thresholds derived from a guideline document,
// kept with a summary of the document for the rewriter.
type Profile struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	DocumentHash string           `json:"document_hash"`
	Thresholds   rules.Thresholds `json:"thresholds"`
	Summary      string           `json:"summary"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type ProfileStore interface {
	Save(ctx context.Context, p *Profile) error
	Get(ctx context.Context, name string) (*Profile, error)
}

type ProfileModel struct {
	ID           string            `gorm:"primaryKey;type:uuid"`
	Name         string            `gorm:"uniqueIndex;not null"`
	DocumentHash string            `gorm:"index;not null"`
	Thresholds   datatypes.JSONMap `gorm:"type:jsonb"`
	Summary      string            `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ProfileModel) TableName() string {
	return "guideline_profiles"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ProfileModel{})
}

// Save inserts the profile or replaces the one stored under the same name.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	thresholds, err := thresholdsToJSONMap(p.Thresholds)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	rec := &ProfileModel{
		ID:           p.ID,
		Name:         p.Name,
		DocumentHash: p.DocumentHash,
		Thresholds:   thresholds,
		Summary:      p.Summary,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"document_hash", "thresholds", "summary", "updated_at"}),
	}).Create(rec).Error
}

func (r *Repository) Get(ctx context.Context, name string) (*Profile, error) {
	var rec ProfileModel
	result := r.db.WithContext(ctx).First(&rec, "name = ?", name)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	thresholds, err := thresholdsFromJSONMap(rec.Thresholds)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:           rec.ID,
		Name:         rec.Name,
		DocumentHash: rec.DocumentHash,
		Thresholds:   thresholds,
		Summary:      rec.Summary,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

func thresholdsToJSONMap(th rules.Thresholds) (datatypes.JSONMap, error) {
	raw, err := json.Marshal(th)
	if err != nil {
		return nil, fmt.Errorf("encode thresholds: %w", err)
	}
	out := datatypes.JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode thresholds: %w", err)
	}
	return out, nil
}

// thresholdsFromJSONMap fills any key missing from the stored map with its
// default.
func thresholdsFromJSONMap(m datatypes.JSONMap) (rules.Thresholds, error) {
	th := rules.DefaultThresholds()
	raw, err := json.Marshal(m)
	if err != nil {
		return th, fmt.Errorf("decode thresholds: %w", err)
	}
	if err := json.Unmarshal(raw, &th); err != nil {
		return th, fmt.Errorf("decode thresholds: %w", err)
	}
	return th, nil
}
