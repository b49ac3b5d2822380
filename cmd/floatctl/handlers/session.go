package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/imamik/floatctl/internal/cloud"
	"github.com/imamik/floatctl/internal/config"
	"github.com/imamik/floatctl/internal/observability"
	"github.com/imamik/floatctl/internal/orchestration"
	"github.com/imamik/floatctl/internal/ui"
)

// session is one command run: loaded config, orchestrator and the resolved
// target instance.
type session struct {
	cfg         *config.Config
	orch        *orchestration.Orchestrator
	observer    observability.Observer
	report      *ui.Report
	target      cloud.Instance
	spinner     *observability.SpinnerObserver
	metrics     *observability.Metrics
	metricsFile string
}

func openSession(ctx context.Context, opts Options) (*session, error) {
	cfg, err := loadConfigFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	secrets, err := loadSecretsFile(opts.SecretsPath)
	if err != nil {
		return nil, err
	}
	if opts.Provider != "" {
		cfg.Provider = opts.Provider
	}
	if opts.Target != "" {
		cfg.Target = opts.Target
	}
	if err := cfg.Validate(secrets); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cp, err := newControlPlane(ctx, cfg, secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	s := &session{cfg: cfg, metricsFile: opts.MetricsFile}
	s.observer = s.buildObserver(opts)
	s.report = ui.NewReport(opts.stdout())
	if opts.Quiet {
		s.report = ui.NewReport(io.Discard)
	}
	s.orch = orchestration.New(cp,
		orchestration.WithSettings(cfg.Settings()),
		orchestration.WithObserver(s.observer),
	)

	target, err := s.orch.Instance(ctx, cfg.Target)
	if err != nil {
		s.stopSpinner()
		if errors.Is(err, cloud.ErrInstanceNotFound) {
			return nil, &TargetNotFoundError{ID: cfg.Target}
		}
		return nil, fmt.Errorf("failed to look up target instance: %w", err)
	}
	s.target = target
	s.observer.Event(observability.Event{
		Type:     observability.EventProgress,
		Message:  "Instance found",
		Resource: target.ID,
		Fields:   map[string]string{"status": string(target.Status)},
	})
	return s, nil
}

// buildObserver assembles the sinks: spinner first so its line is cleared
// before the console writes, then console, then metrics.
func (s *session) buildObserver(opts Options) observability.Observer {
	errOut := opts.stderr()
	tty := isTerminal(errOut)

	var observers []observability.Observer
	if tty && !opts.Quiet {
		s.spinner = observability.NewSpinnerObserver(errOut)
		observers = append(observers, s.spinner)
	}
	observers = append(observers, observability.NewConsoleObserver(observability.ConsoleOptions{
		Out:     errOut,
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
		NoColor: !tty,
	}))
	if opts.MetricsFile != "" {
		s.metrics = observability.NewMetrics()
		observers = append(observers, s.metrics.Observer())
	}
	return observability.Multi(observers...)
}

// close stops the spinner and writes the metrics file if one was requested.
func (s *session) close() error {
	s.stopSpinner()
	if s.metrics == nil {
		return nil
	}
	return s.metrics.WriteTextfile(s.metricsFile)
}

func (s *session) stopSpinner() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}

// run opens a session, calls fn and closes the session.
func run(ctx context.Context, opts Options, fn func(*session) error) (err error) {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()
	return fn(s)
}
