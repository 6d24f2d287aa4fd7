package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"menuboard/internal"
	"menuboard/internal/storage"
)

// SnapshotStore keeps every distinct export body under rawDir, named by its
// content hash, and records each fetch in the database.
type SnapshotStore struct {
	db     *storage.DB
	rawDir string
}

func NewSnapshotStore(db *storage.DB, rawDir string) *SnapshotStore {
	return &SnapshotStore{db: db, rawDir: rawDir}
}

// Store reports changed=true when the body differs from the provider's
// previous snapshot, including the first one.
func (s *SnapshotStore) Store(exp internal.SheetExport) (internal.SnapshotRow, bool, error) {
	hashBytes := sha256.Sum256(exp.Body)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return internal.SnapshotRow{}, false, err
	}

	rawPath := filepath.Join(s.rawDir, hash+"."+extension(exp.Format))
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, exp.Body, 0o644); err != nil {
			return internal.SnapshotRow{}, false, err
		}
	}

	prev, err := s.db.LatestSnapshot(exp.Provider)
	if err != nil {
		return internal.SnapshotRow{}, false, err
	}

	fetchedAt := exp.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	row, err := s.db.InsertSnapshot(internal.SnapshotRow{
		Provider:  exp.Provider,
		Format:    exp.Format,
		Hash:      hash,
		RawRef:    rawPath,
		Size:      len(exp.Body),
		FetchedAt: fetchedAt.Format(time.RFC3339),
	})
	if err != nil {
		return internal.SnapshotRow{}, false, err
	}
	return row, prev == nil || prev.Hash != hash, nil
}

func extension(format string) string {
	switch format {
	case "gviz", "values":
		return "json"
	case "":
		return "bin"
	default:
		return format
	}
}
