package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"menuboard/internal"
	"menuboard/internal/config"
	"menuboard/internal/connectors"
	"menuboard/internal/logging"
	"menuboard/internal/sheet"
	"menuboard/internal/storage"
)

// ProcessingService runs fetch cycles: fetch, snapshot, parse, normalize,
// select. Every cycle gets a new generation number so consumers can drop
// results that arrive after a newer one.
type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	fetch   *connectors.FetchService
	builder FeedBuilder
	log     *zap.Logger
	gen     atomic.Uint64
}

func NewProcessingService(db *storage.DB, cfg config.Config, fetch *connectors.FetchService, log *zap.Logger) *ProcessingService {
	return &ProcessingService{
		db:      db,
		cfg:     cfg,
		fetch:   fetch,
		builder: NewFeedBuilder(cfg),
		log:     logging.OrNop(log),
	}
}

// Generation is the number of the most recently started cycle.
func (s *ProcessingService) Generation() uint64 {
	return s.gen.Load()
}

// Refresh runs one fetch cycle. The returned Feed always carries the
// generation and trace id, even on error. Errors wrap internal.ErrFetch or
// internal.ErrParse; an empty promotion set is not an error here.
func (s *ProcessingService) Refresh(ctx context.Context) (Feed, error) {
	gen := s.gen.Add(1)
	traceID := uuid.NewString()
	start := time.Now()
	log := s.log.With(zap.String("trace_id", traceID), zap.Uint64("generation", gen))

	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	res, err := s.fetch.FetchAndStore(ctx)
	fetchMs := float64(time.Since(start).Milliseconds())
	if err != nil && res.Export.Body == nil {
		err = asFetchErr(err)
		s.recordRun(gen, traceID, s.cfg.SheetProvider, err, map[string]float64{"fetchMs": fetchMs, "totalMs": fetchMs}, nil)
		log.Warn("fetch failed", zap.Error(err))
		return Feed{Generation: gen, TraceID: traceID}, err
	}
	if err != nil {
		log.Warn("snapshot not stored", zap.Error(err))
	}

	parseStart := time.Now()
	table, err := sheet.Parse(sheet.Format(res.Export.Format), res.Export.Body)
	if err != nil {
		total := float64(time.Since(start).Milliseconds())
		s.recordRun(gen, traceID, res.Export.Provider, err, map[string]float64{"fetchMs": fetchMs, "totalMs": total}, nil)
		log.Warn("parse failed", zap.String("format", res.Export.Format), zap.Error(err))
		return Feed{Generation: gen, TraceID: traceID, Provider: res.Export.Provider}, err
	}

	feed := s.builder.Build(table)
	feed.Generation = gen
	feed.TraceID = traceID
	feed.Provider = res.Export.Provider
	feed.FetchedAt = res.Export.FetchedAt
	feed.Changed = res.Changed

	if len(feed.Promotions) > 0 && s.db != nil {
		if err := s.db.SavePromotions(feed.Promotions); err != nil {
			log.Warn("promotion cache not saved", zap.Error(err))
		}
	}

	counts := map[string]int{
		"rows":       len(table.Rows),
		"items":      len(feed.Items),
		"categories": len(feed.Menu),
		"promotions": len(feed.Promotions),
	}
	timings := map[string]float64{
		"fetchMs": fetchMs,
		"parseMs": float64(time.Since(parseStart).Milliseconds()),
		"totalMs": float64(time.Since(start).Milliseconds()),
	}
	var outcome error
	if len(feed.Promotions) == 0 {
		outcome = internal.ErrEmptyResult
	}
	s.recordRun(gen, traceID, feed.Provider, outcome, timings, counts)

	log.Info("fetch cycle done",
		zap.String("provider", feed.Provider),
		zap.String("format", res.Export.Format),
		zap.Bool("changed", feed.Changed),
		zap.Int("items", len(feed.Items)),
		zap.Int("promotions", len(feed.Promotions)),
		zap.Float64("total_ms", timings["totalMs"]),
	)
	return feed, nil
}

// CachedPromotions is the last non-empty promotion set any cycle produced.
func (s *ProcessingService) CachedPromotions() ([]internal.Item, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.LoadPromotions()
}

// RecentRuns exposes the run log.
func (s *ProcessingService) RecentRuns(limit int) ([]internal.RunRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.RecentRuns(limit)
}

func (s *ProcessingService) recordRun(gen uint64, traceID, provider string, err error, timings map[string]float64, counts map[string]int) {
	if s.db == nil {
		return
	}
	run := internal.RunRecord{
		TraceID:    traceID,
		Generation: gen,
		Provider:   provider,
		Outcome:    "ok",
		Timings:    timings,
		Counts:     counts,
	}
	if err != nil {
		run.Outcome = string(internal.Classify(err))
		run.Message = err.Error()
	}
	if err := s.db.InsertRun(run); err != nil {
		s.log.Warn("run not recorded", zap.String("trace_id", traceID), zap.Error(err))
	}
}

func asFetchErr(err error) error {
	if errors.Is(err, internal.ErrFetch) || errors.Is(err, internal.ErrParse) {
		return err
	}
	return fmt.Errorf("%w: %v", internal.ErrFetch, err)
}
