package classifier

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"moderd/internal/hub"
	"moderd/internal/registry"
	"moderd/pkg/types"
)

// warmupProbe is the text sent to both detectors at startup. The result
// is discarded; the probe only forces the backend to load the models.
const warmupProbe = "hola"

// TextClassifier is the slice of the hub client the service depends on.
type TextClassifier interface {
	Classify(ctx context.Context, model, text string) (hub.Scores, error)
}

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxConcurrency = 4
	defaultMaxQueueDepth  = 32
	defaultMaxQueueWait   = 30 * time.Second
)

// Config encapsulates all tunables for Service construction.
type Config struct {
	ToxicityModel  string
	SpamModel      string
	ToxicThreshold float64
	SpamThreshold  float64
	MaxBatchSize   int
	MaxConcurrency int
	MaxQueueDepth  int
	MaxQueueWait   time.Duration
	CacheTTL       time.Duration
	Backend        string
	Version        string
	Environment    string
}

// Service runs the two detectors and derives moderation verdicts.
type Service struct {
	cfg          Config
	backend      TextClassifier
	cache        *resultCache
	slots        chan struct{}
	queue        chan struct{}
	maxQueueWait time.Duration
	toxReady     atomic.Bool
	spamReady    atomic.Bool
	startTime    time.Time
	log          zerolog.Logger
}

// New constructs a Service from Config.
func New(cfg Config, backend TextClassifier, log zerolog.Logger) *Service {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.MaxQueueDepth <= 0 {
		cfg.MaxQueueDepth = defaultMaxQueueDepth
	}
	if cfg.MaxQueueWait <= 0 {
		cfg.MaxQueueWait = defaultMaxQueueWait
	}
	return &Service{
		cfg:          cfg,
		backend:      backend,
		cache:        newResultCache(cfg.CacheTTL),
		slots:        make(chan struct{}, cfg.MaxConcurrency),
		queue:        make(chan struct{}, cfg.MaxQueueDepth),
		maxQueueWait: cfg.MaxQueueWait,
		startTime:    time.Now(),
		log:          log,
	}
}

// Warmup probes both detectors so the backend loads the models. The
// service reports ready only after both probes succeed.
func (s *Service) Warmup(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.backend.Classify(ctx, s.cfg.ToxicityModel, warmupProbe); err != nil {
			return errors.Wrap(err, "toxicity model warmup")
		}
		s.toxReady.Store(true)
		s.log.Info().Str("model", s.cfg.ToxicityModel).Msg("toxicity model ready")
		return nil
	})
	g.Go(func() error {
		if _, err := s.backend.Classify(ctx, s.cfg.SpamModel, warmupProbe); err != nil {
			return errors.Wrap(err, "spam model warmup")
		}
		s.spamReady.Store(true)
		s.log.Info().Str("model", s.cfg.SpamModel).Msg("spam model ready")
		return nil
	})
	return g.Wait()
}

// Classify runs both detectors against text and returns the verdict.
func (s *Service) Classify(ctx context.Context, text string) (types.Classification, error) {
	if c, ok := s.cache.get(text); ok {
		cacheTotal.WithLabelValues("hit").Inc()
		return c, nil
	}
	cacheTotal.WithLabelValues("miss").Inc()

	release, err := s.admit(ctx)
	if err != nil {
		return types.Classification{}, err
	}
	defer release()

	var (
		tox  types.ToxicityResult
		spam types.SpamResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.classifyToxicity(gctx, text)
		if err != nil {
			return err
		}
		tox = r
		return nil
	})
	g.Go(func() error {
		r, err := s.classifySpam(gctx, text)
		if err != nil {
			return err
		}
		spam = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Classification{}, mapBackendError(err)
	}

	recommendation, shouldRemove := decide(tox, spam, s.cfg.ToxicThreshold, s.cfg.SpamThreshold)
	recommendationsTotal.WithLabelValues(string(recommendation)).Inc()

	result := types.Classification{
		Toxicity:        tox,
		Spam:            spam,
		Recommendation:  recommendation,
		ShouldBeRemoved: shouldRemove,
	}
	s.cache.put(text, result)
	return result, nil
}

// ClassifyBatch classifies each text independently with bounded
// parallelism. Results keep request order; per-item failures are
// reported in the item rather than failing the batch.
func (s *Service) ClassifyBatch(ctx context.Context, texts []string) (types.BatchClassification, error) {
	if s.cfg.MaxBatchSize > 0 && len(texts) > s.cfg.MaxBatchSize {
		return types.BatchClassification{}, batchTooLargeError{max: s.cfg.MaxBatchSize}
	}

	results := make([]types.BatchItem, len(texts))
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			c, err := s.Classify(ctx, text)
			if err != nil {
				s.log.Error().Err(err).Str("text", clip(text, 50)).Msg("batch item classification failed")
				results[i] = types.BatchItem{Text: text, Error: err.Error()}
				return nil
			}
			results[i] = types.BatchItem{Text: text, Classification: &c}
			return nil
		})
	}
	_ = g.Wait()

	resp := types.BatchClassification{Results: results, Total: len(texts)}
	for _, item := range results {
		if item.Classification != nil {
			resp.Successful++
		} else {
			resp.Failed++
		}
	}
	return resp, nil
}

// Detectors returns the configured detector catalog.
func (s *Service) Detectors() []types.Detector {
	return registry.Build(s.cfg.ToxicityModel, s.cfg.SpamModel)
}

// Ready reports whether both detectors answered their warmup probe.
func (s *Service) Ready() bool {
	return s.toxReady.Load() && s.spamReady.Load()
}

// Health builds the detailed health snapshot for GET /health.
func (s *Service) Health() types.HealthResponse {
	tox, spam := s.toxReady.Load(), s.spamReady.Load()
	status := "healthy"
	if !tox || !spam {
		status = "degraded"
	}
	return types.HealthResponse{
		Status:              status,
		ToxicityModelLoaded: tox,
		SpamModelLoaded:     spam,
		Backend:             s.cfg.Backend,
		UptimeSeconds:       int64(time.Since(s.startTime).Seconds()),
		Version:             s.cfg.Version,
	}
}

func (s *Service) classifyToxicity(ctx context.Context, text string) (types.ToxicityResult, error) {
	scores, err := s.callBackend(ctx, registry.DetectorToxicity, s.cfg.ToxicityModel, text)
	if err != nil {
		return types.ToxicityResult{}, err
	}
	pos, neg, err := splitBinary(scores, toxicAliases, cleanAliases)
	if err != nil {
		return types.ToxicityResult{}, errors.Wrap(err, "toxicity detector")
	}
	label := types.LabelNonToxic
	if pos > neg {
		label = types.LabelToxic
	}
	return types.ToxicityResult{
		Label:         label,
		ScoreToxic:    round4(pos),
		ScoreNonToxic: round4(neg),
		Confidence:    round4(max(pos, neg)),
	}, nil
}

func (s *Service) classifySpam(ctx context.Context, text string) (types.SpamResult, error) {
	scores, err := s.callBackend(ctx, registry.DetectorSpam, s.cfg.SpamModel, text)
	if err != nil {
		return types.SpamResult{}, err
	}
	pos, neg, err := splitBinary(scores, spamAliases, hamAliases)
	if err != nil {
		return types.SpamResult{}, errors.Wrap(err, "spam detector")
	}
	label := types.LabelNotSpam
	if pos > neg {
		label = types.LabelSpam
	}
	return types.SpamResult{
		Label:        label,
		ScoreSpam:    round4(pos),
		ScoreNotSpam: round4(neg),
		Confidence:   round4(max(pos, neg)),
	}, nil
}

func (s *Service) callBackend(ctx context.Context, detector, model, text string) (hub.Scores, error) {
	start := time.Now()
	scores, err := s.backend.Classify(ctx, model, text)
	backendDuration.WithLabelValues(detector).Observe(time.Since(start).Seconds())
	if err != nil {
		backendRequestsTotal.WithLabelValues(detector, "error").Inc()
		return nil, errors.Wrapf(err, "%s detector", detector)
	}
	backendRequestsTotal.WithLabelValues(detector, "ok").Inc()
	return scores, nil
}

// mapBackendError translates hub failure classes into the typed errors
// the HTTP layer maps to status codes.
func mapBackendError(err error) error {
	cause := errors.Cause(err)
	if hub.IsModelLoading(cause) || hub.IsRateLimited(cause) || hub.IsBackendError(cause) {
		return backendUnavailableError{msg: err.Error()}
	}
	return err
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
