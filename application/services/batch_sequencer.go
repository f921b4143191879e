package services

import (
	"context"
	"fmt"
	"illustrated-story-api/application/ports/inbound"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/channel_utils"
	"illustrated-story-api/domain"
	"time"
)

// PauseFunc waits for d or until ctx is done.
type PauseFunc func(ctx context.Context, d time.Duration) error

type batchSequencer struct {
	logger        outbound.LoggerPort
	workerPool    outbound.TaskDispatcher
	itemGenerator inbound.ItemGeneratorPort
	maxBatchSize  int
	pause         PauseFunc
}

func NewBatchSequencer(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher, itemGenerator inbound.ItemGeneratorPort,
	maxBatchSize int, pause PauseFunc) inbound.BatchSequencerPort {
	if pause == nil {
		pause = SleepContext
	}
	return &batchSequencer{
		logger:        logger,
		workerPool:    workerPool,
		itemGenerator: itemGenerator,
		maxBatchSize:  maxBatchSize,
		pause:         pause,
	}
}

// Stream generates the selected slice strictly in index order, one item at a
// time, pausing between items. The error channel receives at most one value.
func (b *batchSequencer) Stream(ctx context.Context, params inbound.BatchParams) (<-chan domain.GenerationResult, <-chan error) {
	out := make(chan domain.GenerationResult)
	errCh := make(chan error, 1)

	progress, err := b.plan(len(params.Payloads), params.Cursor)
	if err != nil {
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}
	start, end := progress.Cursor.StartIndex, progress.NextIndex

	err = b.workerPool.Submit(func() {
		defer close(out)
		defer close(errCh)

		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}

			req := domain.NewGenerationRequest(params.Kind, params.Payloads[i], i, params.Options)
			result := b.itemGenerator.Run(ctx, req)

			select {
			case out <- result:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}

			if i < end-1 {
				if err := b.pause(ctx, params.Pacing); err != nil {
					errCh <- err
					return
				}
			}
		}
	})
	if err != nil {
		errCh <- err
		close(out)
		close(errCh)
	}

	return out, errCh
}

func (b *batchSequencer) RunBatch(ctx context.Context, params inbound.BatchParams) (*inbound.BatchOutcome, error) {
	progress, err := b.plan(len(params.Payloads), params.Cursor)
	if err != nil {
		return nil, err
	}

	b.logger.DebugWithFields("Starting batch", map[string]interface{}{
		"kind":  params.Kind,
		"start": progress.Cursor.StartIndex,
		"end":   progress.NextIndex,
		"total": progress.Total,
	})

	resultCh, errCh := b.Stream(ctx, params)
	results, err := channel_utils.Collect(resultCh, errCh, params.OnResult)
	if err != nil {
		return nil, err
	}

	progress.Processed = len(results)
	return &inbound.BatchOutcome{
		Results:  results,
		Progress: progress,
	}, nil
}

// plan validates the cursor and resolves the slice to process. A zero batch
// size means the rest of the list, capped by the configured maximum.
func (b *batchSequencer) plan(total int, cursor *domain.BatchCursor) (domain.BatchProgress, error) {
	requested := domain.BatchCursor{StartIndex: 0, BatchSize: 0}
	if cursor != nil {
		requested = *cursor
	}
	if requested.StartIndex < 0 {
		return domain.BatchProgress{}, domain.ClientError(fmt.Sprintf("currentIndex must not be negative, got %d", requested.StartIndex), nil)
	}
	if requested.BatchSize < 0 {
		return domain.BatchProgress{}, domain.ClientError(fmt.Sprintf("batchSize must not be negative, got %d", requested.BatchSize), nil)
	}
	if requested.StartIndex > total {
		return domain.BatchProgress{}, domain.ClientError(
			fmt.Sprintf("currentIndex %d is beyond the %d submitted items", requested.StartIndex, total), nil)
	}

	size := requested.BatchSize
	if size == 0 {
		size = total - requested.StartIndex
	}
	if b.maxBatchSize > 0 && size > b.maxBatchSize {
		size = b.maxBatchSize
	}
	end := requested.StartIndex + size
	if end > total {
		end = total
	}

	return domain.BatchProgress{
		Cursor:    domain.BatchCursor{StartIndex: requested.StartIndex, BatchSize: size},
		Total:     total,
		NextIndex: end,
		Complete:  requested.StartIndex+size >= total,
	}, nil
}

// SleepContext waits for d, returning early with the context error when ctx
// is done first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
