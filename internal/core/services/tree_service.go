package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/core/ports/driving"
	"github.com/custodia-labs/repotree/internal/logger"
)

// Verify interface compliance.
var _ driving.TreeService = (*TreeService)(nil)

// TreeService discovers and filters trees.
type TreeService struct {
	api        driven.RemoteAPI
	loader     driven.TreeLoader
	limiter    *RateLimiter
	progress   driven.ProgressSink
	ignoreCase bool
}

// TreeServiceOption configures a TreeService.
type TreeServiceOption func(*TreeService)

// WithTreeLoader enables reading trees from files.
func WithTreeLoader(l driven.TreeLoader) TreeServiceOption {
	return func(s *TreeService) { s.loader = l }
}

// WithRateLimiter shares a limiter with the API client. Without it one is
// created per BuildTree call from the configuration.
func WithRateLimiter(l *RateLimiter) TreeServiceOption {
	return func(s *TreeService) { s.limiter = l }
}

// WithDiscoveryProgress sets the sink for discovery progress.
func WithDiscoveryProgress(p driven.ProgressSink) TreeServiceOption {
	return func(s *TreeService) { s.progress = p }
}

// WithIgnoreCase makes FilterTree patterns case-insensitive.
func WithIgnoreCase(v bool) TreeServiceOption {
	return func(s *TreeService) { s.ignoreCase = v }
}

// NewTreeService creates a TreeService. api may be nil when only file mode is used.
func NewTreeService(api driven.RemoteAPI, opts ...TreeServiceOption) *TreeService {
	s := &TreeService{api: api, progress: driven.NopProgress{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildTree discovers the tree selected by cfg.Mode.
func (s *TreeService) BuildTree(ctx context.Context, cfg domain.Config) (*domain.Node, []domain.DiscoveryError, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	// Patterns are checked here so a bad pattern fails before any API call.
	if _, err := CompilePatterns(cfg.Includes, cfg.IgnoreCase); err != nil {
		return nil, nil, err
	}
	if _, err := CompilePatterns(cfg.Excludes, cfg.IgnoreCase); err != nil {
		return nil, nil, err
	}

	if cfg.Mode == domain.TreeFromFile {
		if s.loader == nil {
			return nil, nil, domain.NewConfigError("file", "reading trees from files is not available")
		}
		logger.Info("Loading tree from %s", cfg.InFile)
		tree, err := s.loader.LoadTree(cfg.InFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load tree: %w", err)
		}
		return tree, nil, nil
	}

	if s.api == nil {
		return nil, nil, domain.NewConfigError("host", "no API client configured")
	}

	limiter := s.limiter
	if limiter == nil {
		limiter = NewRateLimiter(cfg.APIRateLimit, cfg.RateWindow, WithPacing(cfg.APIRequestsPerSecond, cfg.APIConcurrency))
	}

	progress := newProgressDispatcher(s.progress)
	defer progress.close()

	builder := NewTreeBuilder(s.api, limiter, progress)
	if cfg.Mode == domain.TreeFromUser {
		return builder.BuildUser(ctx, cfg)
	}
	return builder.Build(ctx, cfg)
}

// FilterTree returns the filtered copy of tree.
func (s *TreeService) FilterTree(tree *domain.Node, includes, excludes []string, archived domain.ArchivedPolicy) (*domain.Node, error) {
	return NewTreeFilter(s.ignoreCase).Filter(tree, includes, excludes, archived)
}
