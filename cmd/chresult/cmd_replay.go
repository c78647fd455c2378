package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/revrobotics/chupdater/application/receiver"
	"github.com/revrobotics/chupdater/application/updater"
	"github.com/revrobotics/chupdater/domain/entities"
	"github.com/revrobotics/chupdater/domain/ports"
	"github.com/revrobotics/chupdater/wireformat"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// replayScript is an update request together with the bundles the updater
// sends for each Start call.
type replayScript struct {
	Request  entities.UpdateRequest    `yaml:"request"`
	Attempts [][]wireformat.ResultWire `yaml:"attempts"`
}

var errScriptEnded = errors.New("script ended without a terminal result")

// replayProgress cancels the run once an attempt has sent its last bundle
// without a terminal result and every bundle sent so far has been delivered.
type replayProgress struct {
	mu        sync.Mutex
	sent      int
	delivered int
	ended     bool
	cancel    context.CancelFunc
}

func (p *replayProgress) markSent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent++
}

func (p *replayProgress) markDelivered() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delivered++
	p.check()
}

func (p *replayProgress) markEnded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = true
	p.check()
}

func (p *replayProgress) check() {
	if p.ended && p.delivered >= p.sent {
		p.cancel()
	}
}

func (p *replayProgress) stalled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

// scriptedUpdater plays back one attempt per Start call.
type scriptedUpdater struct {
	attempts [][]wireformat.ResultWire
	next     int
	progress *replayProgress
	wg       sync.WaitGroup
}

var _ ports.UpdaterService = (*scriptedUpdater)(nil)

func (s *scriptedUpdater) Start(_ context.Context, _ entities.UpdateRequest, sink ports.ResultSink) error {
	if s.next >= len(s.attempts) {
		return fmt.Errorf("script has no attempt %d", s.next+1)
	}
	bundles := s.attempts[s.next]
	s.next++

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		terminal := false
		for i := range bundles {
			w := bundles[i]
			if wireformat.DecodeResult(&w).IsTerminal() {
				terminal = true
			}
			s.progress.markSent()
			sink.Send(&w)
		}
		// Nothing will finish the request once this attempt is exhausted.
		if !terminal {
			s.progress.markEnded()
		}
	}()
	return nil
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a scripted update session through the update runner",
		Long: `Replay reads an update request and, per attempt, the result bundles the
updater would send. Every result is printed as it is received, followed by
the outcome. Busy errors are retried using the configured delay.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	var script replayScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return fmt.Errorf("failed to parse script %s: %w", args[0], err)
	}
	switch script.Request.Action {
	case entities.ActionApplyOTAUpdate, entities.ActionUpdateApp:
	case "":
		script.Request.Action = entities.ActionUpdateApp
	default:
		return fmt.Errorf("unknown update action %q", script.Request.Action)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	progress := &replayProgress{cancel: cancel}
	if script.Request.Action == entities.ActionApplyOTAUpdate {
		// The runner reports its own pre-status before the first attempt.
		progress.sent = 1
	}

	out := cmd.OutOrStdout()
	recv := receiver.New(logger, receiver.WithDisplayPrefix(cfg.DisplayPrefix))
	if err := recv.Subscribe("**", func(_ context.Context, d receiver.Delivery) {
		fmt.Fprintf(out, "%s\t%s\n", d.RouteKey, d.Display)
		progress.markDelivered()
	}); err != nil {
		return err
	}

	svc := &scriptedUpdater{attempts: script.Attempts, progress: progress}
	runner := updater.NewRunner(svc, recv, logger, cfg.RunnerOptions()...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runner.Run(ctx)
	}()

	id, err := runner.Submit(ctx, script.Request)
	if err != nil {
		runner.Close()
		<-errCh
		return err
	}
	logger.Debug("replaying update", zap.String("request_id", id), zap.Int("attempts", len(script.Attempts)))

	outcome, ok := <-runner.Done()
	runner.Close()
	runErr := <-errCh
	svc.wg.Wait()
	if progress.stalled() {
		fmt.Fprintf(out, "outcome: %v\n", errScriptEnded)
		return fmt.Errorf("update %s: %w", id, errScriptEnded)
	}
	if !ok {
		return fmt.Errorf("update %s interrupted: %w", id, runErr)
	}

	if outcome.Err != nil {
		fmt.Fprintf(out, "outcome: failed after %d attempt(s): %v\n", outcome.Attempts, outcome.Err)
	} else {
		fmt.Fprintf(out, "outcome: %s after %d attempt(s)\n", outcome.Result.PresentationType(), outcome.Attempts)
	}
	if !outcome.Succeeded() {
		return fmt.Errorf("update %s did not succeed", id)
	}
	return nil
}
