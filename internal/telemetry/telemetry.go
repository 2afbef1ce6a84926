package telemetry

import (
	"context"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
)

type service struct {
	repo Repository
	cfg  Config
}

func NewService(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		return noopCollector{}, nil
	}

	repo, err := NewRepository(cfg.withDefaults())
	if err != nil {
		return nil, err
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, event *ControlEvent) error {
	errFactory := errors.New()

	if event == nil {
		return errFactory.New(ErrInvalidEvent)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Store(ctx, event); err != nil {
			return errFactory.Wrap(ErrEventCollection, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}
	return nil
}

// noopCollector is returned when telemetry is disabled
type noopCollector struct{}

func (noopCollector) Record(_ context.Context, _ *ControlEvent) error { return nil }
func (noopCollector) Close() error                                    { return nil }
