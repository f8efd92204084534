package filesystem

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driving"
	"github.com/Cyb-Leon/jse-decision-support/internal/logger"
)

// Sync scans the root and ingests every accepted file as one batch.
// Per-file ingest failures are reported in the outcomes; scan failures are
// joined into the returned error.
func (c *Connector) Sync(ctx context.Context, svc driving.IngestService) ([]driving.IngestOutcome, error) {
	batch, scanErrs := drain(c.Scan(ctx))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sync %s: %w: %w", c.rootPath, domain.ErrCancelled, err)
	}

	logger.Debug("Scanned %s: %d files, %d errors", c.rootPath, len(batch), len(scanErrs))
	if len(batch) == 0 {
		return nil, errors.Join(scanErrs...)
	}
	return svc.IngestBatch(ctx, batch), errors.Join(scanErrs...)
}

// drain reads both scan channels until they are closed.
func drain(reqs <-chan driving.IngestRequest, errs <-chan error) ([]driving.IngestRequest, []error) {
	var batch []driving.IngestRequest
	var scanErrs []error
	for reqs != nil || errs != nil {
		select {
		case req, ok := <-reqs:
			if !ok {
				reqs = nil
				continue
			}
			batch = append(batch, req)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			scanErrs = append(scanErrs, err)
		}
	}
	return batch, scanErrs
}

// Follow applies file changes to the pipeline until ctx is done.
// Created and updated files are ingested; deleted files are removed.
// onChange, if set, is called with the outcome of every change.
func (c *Connector) Follow(ctx context.Context, svc driving.IngestService, onChange func(Change, error)) error {
	changes, err := c.Watch(ctx)
	if err != nil {
		return err
	}

	for change := range changes {
		err := apply(ctx, svc, change)
		if err != nil {
			logger.Warn("%s %s: %v", change.Type, change.Path, err)
		}
		if onChange != nil {
			onChange(change, err)
		}
	}
	return nil
}

func apply(ctx context.Context, svc driving.IngestService, change Change) error {
	if change.Type == ChangeDeleted {
		err := svc.Remove(ctx, change.Request.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err := svc.Ingest(ctx, change.Request)
	return err
}
