// Package guideline turns externally supplied guideline documents into rule
// thresholds, with an optional text cache and a library of named profiles.
package guideline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/synaptica-ai/admission-review/pkg/common/logger"
	"github.com/synaptica-ai/admission-review/pkg/normalizer"
	"github.com/synaptica-ai/admission-review/pkg/rules"
)

// SummaryLimit bounds how much guideline text is forwarded as rewriter context.
const SummaryLimit = 4000

var ErrInvalidProfileName = errors.New("profile name required")

// Document is a guideline after extraction, normalization and parsing.
type Document struct {
	Hash       string
	Text       normalizer.Text
	Thresholds rules.Thresholds
}

// Summary is the leading part of the guideline text.
func (d Document) Summary() string {
	return normalizer.Truncate(d.Text, SummaryLimit)
}

type Service struct {
	extractor DocumentExtractor
	cache     TextCache
	profiles  ProfileStore
	base      rules.Thresholds
}

// NewService wires the guideline pipeline. cache and profiles may be nil.
func NewService(extractor DocumentExtractor, cache TextCache, profiles ProfileStore, base rules.Thresholds) *Service {
	return &Service{
		extractor: extractor,
		cache:     cache,
		profiles:  profiles,
		base:      base,
	}
}

// Base returns the thresholds used when no guideline applies.
func (s *Service) Base() rules.Thresholds {
	return s.base
}

// Load extracts and parses a guideline document. It never fails: a document
// that cannot be read contributes empty text and the base thresholds.
func (s *Service) Load(ctx context.Context, data []byte) Document {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	log := logger.WithField("document_hash", hash)

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, hash)
		if err != nil {
			log.WithError(err).Warn("guideline cache lookup failed")
		}
		if ok {
			return s.document(hash, normalizer.Text(text))
		}
		log.Debug("guideline cache miss")
	}

	raw := ""
	if s.extractor != nil && len(data) > 0 {
		extracted, err := s.extractor.ExtractText(ctx, data)
		if err != nil {
			log.WithError(err).Warn("guideline document unreadable, using default thresholds")
		} else {
			raw = extracted
		}
	}
	text := normalizer.Normalize(raw)

	// Only cache what was actually extracted so a transient failure is retried.
	if s.cache != nil && strings.TrimSpace(raw) != "" {
		if err := s.cache.Set(ctx, hash, text.String()); err != nil {
			log.WithError(err).Warn("failed to cache guideline text")
		}
	}

	return s.document(hash, text)
}

func (s *Service) document(hash string, text normalizer.Text) Document {
	return Document{
		Hash:       hash,
		Text:       text,
		Thresholds: ParseThresholdsFrom(text, s.base),
	}
}

// SaveProfile parses data and stores the resulting thresholds under name,
// replacing any profile of the same name.
func (s *Service) SaveProfile(ctx context.Context, name string, data []byte) (*Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProfileName
	}

	doc := s.Load(ctx, data)
	profile := &Profile{
		Name:         name,
		DocumentHash: doc.Hash,
		Thresholds:   doc.Thresholds,
		Summary:      doc.Summary(),
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"profile":       name,
		"document_hash": doc.Hash,
		"o2_threshold":  doc.Thresholds.O2Sat,
	}).Info("guideline profile saved")
	return profile, nil
}

func (s *Service) Profile(ctx context.Context, name string) (*Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	return s.profiles.Get(ctx, strings.TrimSpace(name))
}
