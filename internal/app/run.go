package app

import (
	"context"
	"fmt"

	"github.com/vk/extbind/internal/announce"
	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/internal/host"
	"github.com/vk/extbind/internal/manifest"
)

// Run loads the extension and evaluates the configured expressions and
// script against it. With a health check port configured it keeps serving
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer a.closeHealthcheckServer()
	}

	handle, err := a.sequencer.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to load extension: %w", err)
	}

	if a.config.ManifestPath != "" {
		m, err := manifest.Load(ctx, a.config.ManifestPath)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
		if err := manifest.Validate(ctx, handle, m); err != nil {
			return err
		}
		a.logger.Debug("Manifest validation passed.")
	}

	if a.config.AnnounceURL != "" {
		err := announce.Announce(ctx, announce.Config{
			URL:                a.config.AnnounceURL,
			Namespace:          a.config.AnnounceNamespace,
			Event:              a.config.AnnounceEvent,
			AckEvent:           a.config.AnnounceAckEvent,
			Timeout:            a.config.AnnounceTimeout,
			InsecureSkipVerify: a.config.AnnounceInsecure,
		}, handle)
		if err != nil {
			return fmt.Errorf("failed to announce extension: %w", err)
		}
	}

	if err := a.evaluate(ctx, handle); err != nil {
		return err
	}

	if a.httpServer != nil {
		a.logger.Info("Serving until interrupted.")
		<-ctx.Done()
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) evaluate(ctx context.Context, handle *bootstrap.Handle) error {
	h := host.New(handle)

	if len(a.config.Exprs) == 0 && a.config.ScriptPath == "" {
		return writeExports(a.outW, handle.Exports())
	}

	for _, expr := range a.config.Exprs {
		v, err := h.Eval(ctx, expr)
		if err != nil {
			return err
		}
		if err := writeResult(a.outW, expr, v); err != nil {
			return err
		}
	}

	if a.config.ScriptPath != "" {
		results, err := h.EvalFile(ctx, a.config.ScriptPath)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := writeResult(a.outW, r.Name, r.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
