package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"mdp/config"
	"mdp/experiments"
	"mdp/metrics"
	"mdp/model"
	"mdp/solver"
)

// runner solves one environment. envRunner implements it for each state type.
type runner interface {
	Value(cfg *config.Config, out io.Writer, collector metrics.Collector) error
	Policy(cfg *config.Config, out io.Writer, collector metrics.Collector) error
	Experiment(cfg *config.Config) (string, error)
	Throughput(cfg *config.Config, goroutines []int, repeats int) (string, error)
}

type envRunner[S comparable] struct {
	env model.Environment[S]
}

func selectEnvironment(cfg *config.Config) (runner, error) {
	if cfg.File != "" {
		env, err := model.LoadEnvironment(cfg.File)
		if err != nil {
			return nil, err
		}
		return envRunner[string]{env: env}, nil
	}

	switch cfg.Environment {
	case "2x2":
		return envRunner[int]{env: model.TwoByTwo()}, nil
	case "4x3":
		return envRunner[model.Cell]{env: model.FourByThree()}, nil
	default:
		return nil, fmt.Errorf("unknown environment %q", cfg.Environment)
	}
}

func (r envRunner[S]) Value(cfg *config.Config, out io.Writer, collector metrics.Collector) error {
	vi := solver.NewValueIterator[S](
		solver.WithDelta(cfg.Delta),
		solver.WithMaxIterations(cfg.SweepCap(cfg.Gamma)),
		solver.WithGoroutines(cfg.Goroutines),
		solver.WithMetrics(collector),
	)
	u, metric, err := vi.Solve(r.env.MDP, cfg.Gamma, r.env.Reward)
	if err != nil {
		return fmt.Errorf("value iteration failed: %w", err)
	}
	log.Info().Str("environment", r.env.Name).Int("sweeps", metric.Sweeps).Dur("duration", metric.Duration).Msg("solved")

	if cfg.Quiet {
		return nil
	}
	greedy, err := solver.GreedyPolicy(r.env.MDP, u)
	if err != nil {
		return err
	}
	for _, s := range r.env.MDP.States() {
		if r.env.MDP.IsTerminal(s) {
			fmt.Fprintf(out, "%v: %.3f\n", s, u[s])
			continue
		}
		fmt.Fprintf(out, "%v: %.3f %s\n", s, u[s], greedy[s])
	}
	return nil
}

func (r envRunner[S]) Policy(cfg *config.Config, out io.Writer, collector metrics.Collector) error {
	pi := solver.NewPolicyIterator[S](
		solver.WithEvaluationSweeps(cfg.VIterations),
		solver.WithMaxRounds(cfg.VIterations),
		solver.WithMetrics(collector),
	)
	policy, metric, err := pi.Solve(r.env.MDP, cfg.Gamma, r.env.Reward, r.env.Policy.Clone())
	if err != nil {
		return fmt.Errorf("policy iteration failed: %w", err)
	}
	log.Info().Str("environment", r.env.Name).Int("rounds", metric.Rounds).Dur("duration", metric.Duration).Msg("solved")

	if cfg.Quiet {
		return nil
	}
	for _, s := range r.env.MDP.States() {
		if !r.env.MDP.IsTerminal(s) {
			fmt.Fprintf(out, "%v: %s\n", s, policy[s])
		}
	}
	return nil
}

func (r envRunner[S]) Experiment(cfg *config.Config) (string, error) {
	return experiments.RunDiscountSweep(r.env, cfg)
}

func (r envRunner[S]) Throughput(cfg *config.Config, goroutines []int, repeats int) (string, error) {
	return experiments.RunThroughputSweep(r.env, cfg, goroutines, repeats)
}

// solve runs fn with a metrics collector. With a metrics address configured
// the collector is exported to Prometheus and served until interrupted.
func solve(cfg *config.Config, fn func(metrics.Collector) error) error {
	if cfg.MetricsAddr == "" {
		return fn(metrics.NewCollector())
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheusCollector(registry)
	if err != nil {
		return err
	}
	if err := fn(collector); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serveMetrics(ctx, cfg.MetricsAddr, registry)
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.Info().Msgf("metrics available at http://%s/metrics, press Ctrl+C to exit", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}
	log.Info().Msg("goodbye")
	return nil
}
