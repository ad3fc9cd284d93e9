package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/db"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/errors"
)

// ExportSchemaVersion is written in the export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path                   string // optional, default: <base>/exports/cpa-<timestamp>.jsonl
	IncludeRecommendations bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path            string `json:"path"`
	Envelopes       int    `json:"envelopes"`
	Cards           int    `json:"cards"`
	Recommendations int    `json:"recommendations"`
	ExportedAt      int64  `json:"exported_at"`
}

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	Export        bool   `json:"_cpa_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one data line of an export file. Exactly one of the
// payload fields is set, matching Type.
type ExportRecord struct {
	Type           string               `json:"type"`
	Envelope       *card.Envelope       `json:"envelope,omitempty"`
	Card           *card.Card           `json:"card,omitempty"`
	Recommendation *card.Recommendation `json:"recommendation,omitempty"`
}

// Export writes envelopes, then cards, then optionally recommendations to a
// JSONL file. The data is read in one transaction. The file is written to a
// temporary name and renamed into place, so an existing file survives a
// failed export.
func (s *Service) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	path := input.Path
	if path == "" {
		path = filepath.Join(s.Paths.ExportsDir, fmt.Sprintf("cpa-%s.jsonl", now.Format("2006-01-02T150405")))
	}
	if err := s.Paths.Validate(path, PathCheckWrite, ExportExtensions); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	var envs []card.Envelope
	var cards []card.Card
	var recs []card.Recommendation
	err := s.Store.ReadTx(ctx, func(tx *db.Store) error {
		var err error
		if envs, err = tx.ListEnvelopes(ctx); err != nil {
			return err
		}
		if cards, err = tx.ListCards(ctx); err != nil {
			return err
		}
		if input.IncludeRecommendations {
			recs, err = tx.ListRecentRecommendations(ctx, 0)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	if err := enc.Encode(ExportHeader{Export: true, SchemaVersion: ExportSchemaVersion, ExportedAt: now.Unix()}); err != nil {
		return nil, errors.NewInternal(err)
	}
	for i := range envs {
		if err := enc.Encode(ExportRecord{Type: "envelope", Envelope: &envs[i]}); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	for i := range cards {
		if err := enc.Encode(ExportRecord{Type: "card", Card: &cards[i]}); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	for i := range recs {
		if err := enc.Encode(ExportRecord{Type: "recommendation", Recommendation: &recs[i]}); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}
	// Windows refuses to rename over an existing file; keep the old one.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	s.Logger.Info("export written", "path", path, "envelopes", len(envs), "cards", len(cards))
	return &ExportOutput{
		Path:            path,
		Envelopes:       len(envs),
		Cards:           len(cards),
		Recommendations: len(recs),
		ExportedAt:      now.Unix(),
	}, nil
}
