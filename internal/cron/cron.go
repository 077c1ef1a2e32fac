package cron

import (
	"context"

	"promptgate/config"
	"promptgate/internal/cron/job"
	"promptgate/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewCron,
	job.NewUsageStoreProbe,
	wire.Bind(new(job.Prober), new(*service.HealthService)),
)

const defaultProbeSpec = "*/30 * * * * *"

type Cron struct {
	logger     *zap.Logger
	server     *cron.Cron
	probeSpec  string
	storeProbe *job.UsageStoreProbe
}

// NewCron .
func NewCron(logger *zap.Logger, conf *config.Configuration, storeProbe *job.UsageStoreProbe) *Cron {
	server := cron.New(
		cron.WithSeconds(),
	)
	probeSpec := conf.Usage.ProbeSpec
	if probeSpec == "" {
		probeSpec = defaultProbeSpec
	}

	return &Cron{
		logger:     logger,
		server:     server,
		probeSpec:  probeSpec,
		storeProbe: storeProbe,
	}
}

func (c *Cron) Run() error {
	if _, err := c.server.AddJob(c.probeSpec, c.storeProbe); err != nil {
		return err
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	stopped := c.server.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
