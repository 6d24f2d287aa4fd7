// Package signage drives the TV screen: it refreshes the feed on an
// interval, feeds the promotions to the rotation controller and publishes
// a snapshot of the screen on every change.
package signage

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"menuboard/internal"
	"menuboard/internal/catalog"
	"menuboard/internal/config"
	"menuboard/internal/logging"
	"menuboard/internal/pipeline"
	"menuboard/internal/qr"
	"menuboard/internal/rotation"
	"menuboard/internal/weather"
)

// Refresher runs fetch cycles. *pipeline.ProcessingService implements it.
type Refresher interface {
	Refresh(ctx context.Context) (pipeline.Feed, error)
	CachedPromotions() ([]internal.Item, error)
}

type WeatherSource interface {
	Current(ctx context.Context) (weather.Conditions, error)
}

// Snapshot is the full state of the screen at one moment.
type Snapshot struct {
	Frame      rotation.Frame      `json:"frame"`
	Card       *pipeline.PromoCard `json:"card,omitempty"`
	Status     Status              `json:"status"`
	Clock      ClockLabels         `json:"clock"`
	Progress   float64             `json:"progress"`
	Weather    string              `json:"weather,omitempty"`
	Links      []qr.Link           `json:"links"`
	Generation uint64              `json:"generation"`
	Promotions int                 `json:"promotions"`
}

type Option func(*Service)

func WithClock(c rotation.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

func WithWeather(w WeatherSource) Option {
	return func(s *Service) { s.weather = w }
}

type Service struct {
	cfg     config.Config
	proc    Refresher
	weather WeatherSource
	log     *zap.Logger
	clock   rotation.Clock
	rng     *rand.Rand
	rot     *rotation.Controller
	links   []qr.Link

	applyMu sync.Mutex

	mu           sync.Mutex
	applied      uint64
	haveGood     bool
	promos       []internal.Item
	feed         pipeline.Feed
	status       Status
	weatherLabel string
	current      Snapshot
	subs         map[int]func(Snapshot)
	nextSub      int
}

func NewService(cfg config.Config, proc Refresher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg,
		proc:   proc,
		log:    logging.OrNop(log),
		links:  qr.Links(cfg),
		status: loadingStatus(),
		subs:   map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(s)
	}
	var rotOpts []rotation.Option
	if s.clock != nil {
		rotOpts = append(rotOpts, rotation.WithClock(s.clock))
	}
	s.rot = rotation.New(s.onFrame, cfg.RotateInterval, rotOpts...)
	s.current = s.buildSnapshot(rotation.Frame{Empty: true})
	return s
}

// Run refreshes until ctx is cancelled. Fetch errors never end the loop.
func (s *Service) Run(ctx context.Context) error {
	defer s.rot.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(gctx, s.cfg.RefreshInterval, func() {
			_ = s.Refresh(gctx)
		})
	})
	if s.weather != nil {
		g.Go(func() error {
			return every(gctx, s.cfg.WeatherRefresh, func() {
				s.refreshWeather(gctx)
			})
		})
	}
	return g.Wait()
}

// Refresh runs one fetch cycle and applies its result.
func (s *Service) Refresh(ctx context.Context) error {
	feed, err := s.proc.Refresh(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.Apply(feed, err)
	return err
}

// Apply installs the outcome of one fetch cycle. Results from a generation
// older than the last applied one are dropped and Apply returns false.
func (s *Service) Apply(feed pipeline.Feed, fetchErr error) bool {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if feed.Generation != 0 && feed.Generation < s.applied {
		s.mu.Unlock()
		s.log.Debug("stale feed dropped", zap.Uint64("generation", feed.Generation), zap.Uint64("applied", s.applied))
		return false
	}
	s.applied = feed.Generation

	kind := internal.Classify(fetchErr)
	if kind == internal.FailureNone && len(feed.Promotions) == 0 {
		kind = internal.FailureEmpty
	}

	reload := true
	switch kind {
	case internal.FailureNone:
		s.feed = feed
		s.promos = feed.Promotions
		s.haveGood = true
		s.status = okStatus(len(feed.Promotions))
	case internal.FailureEmpty:
		s.feed = feed
		s.promos = nil
		s.haveGood = true
		s.status = emptyStatus()
	default:
		if s.haveGood {
			reload = false
			s.status = errorStatus(kind, len(s.promos) > 0)
		} else {
			s.promos = s.cachedPromotions()
			s.status = errorStatus(kind, len(s.promos) > 0)
		}
		s.log.Warn("fetch cycle failed", zap.String("kind", string(kind)), zap.Bool("stale", s.status.Stale), zap.Error(fetchErr))
	}
	promos := s.promos
	s.mu.Unlock()

	if reload {
		s.rot.Load(s.entries(promos))
	} else {
		s.publish()
	}
	return true
}

// Snapshot returns the screen state with a fresh clock and progress.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.current
	snap.Status = s.status
	snap.Weather = s.weatherLabel
	s.mu.Unlock()

	snap.Clock = Labels(s.now())
	snap.Progress = s.rot.Progress()
	return snap
}

// Feed is the last successfully parsed feed.
func (s *Service) Feed() pipeline.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed
}

func (s *Service) Links() []qr.Link {
	return s.links
}

// Subscribe registers fn for every published snapshot. fn runs on the
// publishing goroutine and must not block.
func (s *Service) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) entries(promos []internal.Item) []rotation.Entry {
	if s.cfg.Shuffle {
		promos = catalog.Shuffle(promos, s.rng)
	}
	return rotation.BuildEntries(promos, rotation.PlanOptions{
		DefaultDuration: s.cfg.RotateInterval,
		SummaryEvery:    s.cfg.SummaryEvery,
		SummarySize:     s.cfg.SummarySize,
		SummaryDuration: s.cfg.SummaryDuration,
		QREvery:         s.cfg.QREvery,
		QRDuration:      s.cfg.QRDuration,
		Line:            summaryLine,
	})
}

func summaryLine(it internal.Item) string {
	if price := pipeline.MainPrice(it); price != "" {
		return it.Name + " · " + price
	}
	return it.Name
}

func (s *Service) cachedPromotions() []internal.Item {
	items, err := s.proc.CachedPromotions()
	if err != nil {
		s.log.Warn("promotion cache unreadable", zap.Error(err))
		return nil
	}
	return items
}

func (s *Service) refreshWeather(ctx context.Context) {
	cond, err := s.weather.Current(ctx)
	if err != nil {
		s.log.Debug("weather refresh failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.weatherLabel = cond.Label()
	s.mu.Unlock()
	s.publish()
}

func (s *Service) onFrame(frame rotation.Frame) {
	snap := s.buildSnapshot(frame)
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	s.publish()
}

func (s *Service) buildSnapshot(frame rotation.Frame) Snapshot {
	snap := Snapshot{Frame: frame, Links: s.links}
	if frame.Entry != nil && frame.Entry.Item != nil {
		card := pipeline.NewPromoCard(*frame.Entry.Item)
		snap.Card = &card
	}
	s.mu.Lock()
	snap.Generation = s.applied
	snap.Promotions = len(s.promos)
	s.mu.Unlock()
	return snap
}

func (s *Service) publish() {
	snap := s.Snapshot()
	s.mu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Service) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now()
}

// every calls fn now and then on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) error {
	if interval <= 0 {
		interval = time.Minute
	}
	fn()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		}
	}
}
