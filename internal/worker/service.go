package worker

import (
	"context"
	"errors"
	"time"

	"github.com/astra-preschool/internal/config"
	"github.com/astra-preschool/internal/logger"
	"github.com/astra-preschool/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	ledgerReconcileInterval = time.Hour
	otpPurgeInterval        = 10 * time.Minute
)

// Service runs the asynq server.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the queue worker service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name is the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the server and the periodic reconciliation sweep.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PaymentService != nil {
		go s.runLedgerReconcileLoop(ctx)
	}
	if s.consumer != nil && s.consumer.OtpService != nil {
		go s.runOtpPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the server down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runLedgerReconcileLoop sweeps all students against the ledger on a fixed
// interval so drifted fee caches are repaired without an operator.
func (s *Service) runLedgerReconcileLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PaymentService == nil {
		return
	}
	runOnce := func() {
		report, err := s.consumer.PaymentService.Reconcile(0)
		if err != nil {
			logger.Warnw("worker_ledger_reconcile_sweep_failed", "error", err)
			return
		}
		if len(report.Drifted) > 0 {
			logger.Warnw("worker_ledger_reconcile_sweep_repaired",
				"checked", report.Checked,
				"drifted", len(report.Drifted),
			)
		}
	}
	runOnce()

	ticker := time.NewTicker(ledgerReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runOtpPurgeLoop deletes expired login codes from the fallback table.
func (s *Service) runOtpPurgeLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OtpService == nil {
		return
	}
	runOnce := func() {
		purged, err := s.consumer.OtpService.PurgeExpired()
		if err != nil {
			logger.Warnw("worker_otp_purge_failed", "error", err)
			return
		}
		if purged > 0 {
			logger.Debugw("worker_otp_purge_done", "purged", purged)
		}
	}
	runOnce()

	ticker := time.NewTicker(otpPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
