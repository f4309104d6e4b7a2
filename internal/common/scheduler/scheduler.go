// Package scheduler runs periodic maintenance jobs such as the search cache
// sweep and rate limiter eviction.
package scheduler

import (
	"context"
	"fmt"

	cronlib "github.com/robfig/cron/v3"

	"ai-mood-gateway/internal/common/logger"
)

var parser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

type Scheduler struct {
	cron *cronlib.Cron
	log  logger.Logger
}

func New(log logger.Logger) *Scheduler {
	log = log.With(map[string]interface{}{"component": "scheduler"})
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cronlib.New(
			cronlib.WithParser(parser),
			cronlib.WithLogger(adapter),
			cronlib.WithChain(cronlib.Recover(adapter), cronlib.SkipIfStillRunning(adapter)),
		),
		log: log,
	}
}

// Add registers job under spec, e.g. "@every 30m" or "*/5 * * * *".
func (s *Scheduler) Add(name, spec string, job func()) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug("running job", map[string]interface{}{"job": name})
		job()
	})
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	s.log.Info("job scheduled", map[string]interface{}{"job": name, "spec": spec})
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out", nil)
	}
}

type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, kvToMap(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvToMap(keysAndValues)
	fields["error"] = err
	c.log.Error(msg, fields)
}

func kvToMap(kv []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
