package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.trai.ch/compplan/internal/adapters/watcher"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Watch plans once, then re-plans whenever files below the managed root or
// the declared directories change. It returns when ctx is cancelled.
// Failed re-plans are reported and the loop keeps going.
func (a *App) Watch(ctx context.Context, opts PlanOptions) error {
	settings, err := a.settings(opts)
	if err != nil {
		return errors.Join(domain.ErrPlanningFailed, err)
	}

	tracer, shutdown := a.tracer(settings.Verbose)
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	if err := a.pass(ctx, tracer, settings, opts); err != nil {
		a.logger.Error(errors.Join(domain.ErrPlanningFailed, err))
	}

	roots := watchRoots(settings)
	if len(roots) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrWatchFailed, domain.ErrManagedRootInvalid.Error()), "path", settings.ManagedRoot)
	}
	if err := a.watcher.Start(ctx, roots...); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWatchFailed, err.Error()), "roots", roots)
	}
	a.logger.Info(fmt.Sprintf("watching %s for changes", settings.ManagedRoot))

	output := canonical(settings.OutputRoot)
	if output == "" && settings.OutputRoot != "" {
		output = filepath.Clean(settings.OutputRoot)
	}
	trigger := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultWindow, func(paths []string) {
		select {
		case trigger <- paths:
		default:
			// A re-plan is already queued and will see these changes.
		}
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		debouncer.Stop()
		return a.watcher.Stop()
	})

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if output != "" && domain.IsWithin(output, event.Path) {
				continue
			}
			debouncer.Add(event.Path)
		}
		if ctx.Err() == nil {
			return zerr.Wrap(domain.ErrWatchFailed, "event stream closed")
		}
		return nil
	})

	// Re-plans run one at a time on this goroutine.
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case paths := <-trigger:
				if settings.Verbose {
					a.logger.Info(fmt.Sprintf("%d changed path(s), re-planning", len(paths)))
				}
				if err := a.pass(ctx, tracer, settings, opts); err != nil {
					a.logger.Error(errors.Join(domain.ErrPlanningFailed, err))
				}
			}
		}
	})

	return g.Wait()
}

// watchRoots lists the managed root plus declared directories living outside it.
func watchRoots(s *domain.Settings) []string {
	root := canonical(s.ManagedRoot)
	if root == "" {
		return nil
	}
	roots := []string{root}

	var candidates []string
	for _, raw := range []string{s.ChunkDirs, s.EntryDirs} {
		candidates = append(candidates, domain.SplitList(raw)...)
	}
	for _, set := range s.EntrySets {
		candidates = append(candidates, set.Source)
	}

	for _, c := range candidates {
		if !filepath.IsAbs(c) {
			c = filepath.Join(s.ManagedRoot, filepath.FromSlash(c))
		}
		dir := canonical(c)
		if dir == "" || slices.ContainsFunc(roots, func(r string) bool { return domain.IsWithin(r, dir) }) {
			continue
		}
		roots = append(roots, dir)
	}
	return roots
}

// canonical resolves symlinks, or returns "" when path does not exist.
func canonical(path string) string {
	if path == "" {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return ""
	}
	return resolved
}
