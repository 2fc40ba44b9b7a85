// Package jobs contiene tareas de mantenimiento en background.
package jobs

import (
	"context"
	"time"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/metrics"
	"github.com/dropDatabas3/devportal/internal/observability/logger"
)

const (
	DefaultSweepInterval = time.Minute
	sweepTimeout         = 30 * time.Second
)

// Sweeper elimina authorization codes vencidos. Es solo limpieza: el canje
// chequea la expiración por su cuenta.
type Sweeper struct {
	Codes    repository.AuthCodeRepository
	Interval time.Duration
	Now      func() time.Time
}

// NewSweeper crea un sweeper con intervalo por defecto si interval <= 0.
func NewSweeper(codes repository.AuthCodeRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{Codes: codes, Interval: interval, Now: time.Now}
}

// Run ejecuta un barrido por tick hasta que ctx termina. Los errores se
// loguean y el loop continúa.
func (s *Sweeper) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Component("sweeper"))
	log.Info("sweeper started", logger.String("interval", s.Interval.String()))

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				log.Warn("sweep failed", logger.Err(err))
			}
		}
	}
}

// SweepOnce elimina los codes vencidos al instante actual y retorna cuántos.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	cctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.Codes.DeleteExpired(cctx, now())
	if err != nil {
		return 0, err
	}
	metrics.RecordSwept(n)
	if n > 0 {
		logger.From(ctx).Info("expired codes removed", logger.Component("sweeper"), logger.Count(n))
	}
	return n, nil
}
