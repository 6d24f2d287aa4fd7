package connectors

import (
	"context"

	"menuboard/internal"
	"menuboard/internal/storage"
)

type FetchService struct {
	connector SheetConnector
	store     *SnapshotStore
}

type FetchResult struct {
	Export   internal.SheetExport
	Snapshot internal.SnapshotRow
	Changed  bool
}

func NewFetchService(db *storage.DB, rawDir string, connector SheetConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewSnapshotStore(db, rawDir),
	}
}

// FetchAndStore downloads one export and snapshots it. A snapshot failure
// is reported but the export is still returned for processing.
func (s *FetchService) FetchAndStore(ctx context.Context) (FetchResult, error) {
	exp, err := s.connector.FetchExport(ctx)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Export: exp, Changed: true}
	if s.store == nil || s.store.db == nil {
		return res, nil
	}
	row, changed, err := s.store.Store(exp)
	if err != nil {
		return res, err
	}
	res.Snapshot = row
	res.Changed = changed
	return res, nil
}
