package resilience

import (
	"context"
	"log/slog"

	"github.com/bcdannyboy/fxvol/models"
)

// Processor fetches a slice of security IDs in one call.
type Processor func(ctx context.Context, ids []string) ([]models.SecurityData, error)

// BatchResult separates recovered data from the items that failed even when
// retried on their own.
type BatchResult struct {
	Successful  []models.SecurityData
	Failed      []string
	BatchErrors map[int]error
}

// BatchWithRecovery processes ids in fixed-size batches. When a whole batch
// fails, each of its items is retried individually so one poisoned security
// cannot sink its batchmates.
func BatchWithRecovery(ctx context.Context, ids []string, batchSize int, process Processor) BatchResult {
	if batchSize < 1 {
		batchSize = 1
	}
	result := BatchResult{BatchErrors: make(map[int]error)}

	for start, batchIdx := 0, 0; start < len(ids); start, batchIdx = start+batchSize, batchIdx+1 {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		data, err := process(ctx, batch)
		if err == nil {
			result.Successful = append(result.Successful, data...)
			continue
		}

		result.BatchErrors[batchIdx] = err
		slog.Warn("batch failed, retrying items individually",
			"batch", batchIdx, "size", len(batch), "error", err)

		for _, id := range batch {
			item, itemErr := process(ctx, []string{id})
			if itemErr != nil {
				result.Failed = append(result.Failed, id)
				continue
			}
			result.Successful = append(result.Successful, item...)
		}
	}
	return result
}
