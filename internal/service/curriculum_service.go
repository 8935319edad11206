package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"curricula/internal/cache"
	"curricula/internal/domain"
	"curricula/internal/metrics"
	"curricula/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSummaryTTL is used when no TTL is configured.
const DefaultSummaryTTL = time.Hour

// CurriculumServiceOptions carries the settings of a curriculumService.
type CurriculumServiceOptions struct {
	OutputDir  string
	SummaryTTL time.Duration
	// MaxParallel bounds BuildAll; zero means runtime.NumCPU().
	MaxParallel int
}

// curriculumService implements domain.CurriculumService
type curriculumService struct {
	registry    domain.TemplateRegistry
	progression *domain.EducationalProgression
	repo        domain.CurriculumRepository
	txManager   domain.TransactionManager
	cache       domain.Cache
	metrics     *metrics.BuildMetrics
	renderers   Renderers
	opts        CurriculumServiceOptions
	logger      *zap.Logger
}

// NewCurriculumService creates a new instance of curriculumService. repo,
// txManager, cache and m may be nil: builds are then not stored, not cached
// or not counted respectively.
func NewCurriculumService(
	registry domain.TemplateRegistry,
	repo domain.CurriculumRepository,
	txManager domain.TransactionManager,
	cache domain.Cache,
	m *metrics.BuildMetrics,
	renderers Renderers,
	opts CurriculumServiceOptions,
	logger *zap.Logger,
) domain.CurriculumService {
	if opts.SummaryTTL <= 0 {
		opts.SummaryTTL = DefaultSummaryTTL
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &curriculumService{
		registry:    registry,
		progression: domain.NewEducationalProgression(),
		repo:        repo,
		txManager:   txManager,
		cache:       cache,
		metrics:     m,
		renderers:   renderers,
		opts:        opts,
		logger:      logger,
	}
}

func (s *curriculumService) ListDisciplines() []string {
	return s.registry.Disciplines()
}

func (s *curriculumService) Build(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
	return s.build(ctx, s.canonical(discipline), s.opts.OutputDir)
}

// BuildAll builds every registered discipline concurrently, each into its
// own sub-directory of the output directory. The first failure cancels the
// remaining builds and is returned.
func (s *curriculumService) BuildAll(ctx context.Context) ([]*domain.MasterCurriculum, error) {
	disciplines := s.registry.Disciplines()
	results := make([]*domain.MasterCurriculum, len(disciplines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxParallel)
	for i, d := range disciplines {
		i, d := i, d
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			mc, err := s.build(gctx, d, filepath.Join(s.opts.OutputDir, util.Slugify(d)))
			if err != nil {
				return fmt.Errorf("build %s: %w", d, err)
			}
			results[i] = mc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Built all disciplines", zap.Int("count", len(results)))
	return results, nil
}

func (s *curriculumService) build(ctx context.Context, discipline, outputDir string) (mc *domain.MasterCurriculum, err error) {
	start := time.Now()
	defer func() {
		concepts := 0
		if mc != nil {
			concepts = mc.TotalConcepts
		}
		s.metrics.ObserveBuild(discipline, time.Since(start), concepts, err)
	}()

	builder, err := NewMasterCurriculumBuilder(discipline, outputDir, s.registry, s.progression,
		s.renderers, s.logger, WithBuildID(util.NewULID()))
	if err != nil {
		return nil, err
	}
	mc, err = builder.BuildMasterCurriculum(ctx)
	if err != nil {
		s.logger.Warn("Curriculum build failed", zap.String("discipline", discipline), zap.Error(err))
		return nil, err
	}

	if s.repo != nil && s.txManager != nil {
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.repo.SaveBuild(txCtx, mc)
		})
		if err != nil {
			return nil, domain.NewInternalError("failed to store curriculum build", err)
		}
	}

	s.cacheJSON(ctx, cache.CurriculumSummaryKey(discipline), summaryOf(mc))
	return mc, nil
}

// GetLatest returns the summary of the newest stored build. Concepts are
// not included; see GetConcepts.
func (s *curriculumService) GetLatest(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
	name := s.canonical(discipline)
	key := cache.CurriculumSummaryKey(name)

	var cached domain.MasterCurriculum
	if s.readCachedJSON(ctx, key, &cached) {
		return &cached, nil
	}

	if s.repo == nil {
		return nil, domain.NewBuildNotFoundError(name)
	}
	latest, err := s.repo.GetLatestBuild(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cacheJSON(ctx, key, latest)
	return latest, nil
}

func (s *curriculumService) GetConcepts(ctx context.Context, discipline string) ([]*domain.CurriculumConcept, error) {
	latest, err := s.GetLatest(ctx, discipline)
	if err != nil {
		return nil, err
	}
	key := cache.CurriculumConceptsKey(latest.Discipline, latest.BuildID)

	var cached []*domain.CurriculumConcept
	if s.readCachedJSON(ctx, key, &cached) {
		return cached, nil
	}
	if s.repo == nil {
		return nil, domain.NewBuildNotFoundError(latest.Discipline)
	}

	concepts, err := s.repo.GetConcepts(ctx, latest.BuildID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load concepts", err)
	}
	s.cacheJSON(ctx, key, concepts)
	return concepts, nil
}

func (s *curriculumService) ListBuilds(ctx context.Context, discipline string) ([]*domain.MasterCurriculum, error) {
	if s.repo == nil {
		return []*domain.MasterCurriculum{}, nil
	}
	return s.repo.ListBuilds(ctx, s.canonical(discipline))
}

// ArtifactPath returns the file of kind written by the newest stored build.
// A build whose file has since been removed yields a NOT_FOUND error.
func (s *curriculumService) ArtifactPath(ctx context.Context, discipline string, kind domain.ArtifactKind) (string, error) {
	latest, err := s.GetLatest(ctx, discipline)
	if err != nil {
		return "", err
	}

	var path string
	switch kind {
	case domain.ArtifactGraph:
		path = latest.GraphPath
	case domain.ArtifactHeatmap:
		path = latest.HeatmapPath
	case domain.ArtifactTable:
		path = latest.CurriculumTablePath
	case domain.ArtifactSnapshot:
		path = latest.SnapshotPath
	default:
		return "", domain.ValidationErrors{domain.NewInvalidFormatError("kind", string(kind))}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.NewNotFoundError(fmt.Sprintf("%s artifact of %s is missing", kind, latest.Discipline)).
				WithContext("path", path)
		}
		return "", domain.NewInternalError("failed to stat artifact", err)
	}
	return path, nil
}

// canonical maps a case-insensitive discipline name to the template's
// spelling. Unknown names are returned unchanged.
func (s *curriculumService) canonical(discipline string) string {
	if tpl, ok := s.registry.Lookup(discipline); ok {
		return tpl.Discipline
	}
	return discipline
}

// summaryOf strips the in-memory parts of a build so the cached value has
// the same shape as a summary loaded from the repository.
func summaryOf(mc *domain.MasterCurriculum) *domain.MasterCurriculum {
	return &domain.MasterCurriculum{
		BuildID:             mc.BuildID,
		Discipline:          mc.Discipline,
		TotalConcepts:       mc.TotalConcepts,
		Categories:          mc.Categories,
		CurriculumTablePath: mc.CurriculumTablePath,
		GraphPath:           mc.GraphPath,
		HeatmapPath:         mc.HeatmapPath,
		SnapshotPath:        mc.SnapshotPath,
		GenerationTimestamp: mc.GenerationTimestamp,
	}
}

func (s *curriculumService) cacheJSON(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, v, s.opts.SummaryTTL); err != nil {
		s.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (s *curriculumService) readCachedJSON(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := cache.GetJSON(ctx, s.cache, key, dest)
	switch {
	case err == nil:
		s.logger.Debug("Cache hit", zap.String("key", key))
		return true
	case errors.Is(err, domain.ErrCacheCorrupt):
		s.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
	case !errors.Is(err, domain.ErrCacheMiss):
		s.logger.Warn("Failed to read cache", zap.String("key", key), zap.Error(err))
	}
	return false
}
