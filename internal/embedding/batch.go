package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
)

// BatchProcessor 批处理器
// 将大量文本分批并行嵌入，结果保持输入顺序
type BatchProcessor struct {
	client     Client // 嵌入客户端
	batchSize  int    // 每批处理的文本数量
	maxWorkers int    // 最大并行工作线程数
}

// NewBatchProcessor 创建新的批处理器
func NewBatchProcessor(client Client, batchSize int, maxWorkers int) *BatchProcessor {
	if batchSize <= 0 {
		batchSize = 16
	}

	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	return &BatchProcessor{
		client:     client,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
	}
}

// Process 处理一批文本，将它们分成多个小批次并行处理
func (p *BatchProcessor) Process(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batches := splitIntoBatches(texts, p.batchSize)

	wp := workerpool.New(p.maxWorkers)
	resultsMu := sync.Mutex{}
	batchVectors := make([][][]float32, len(batches))
	var processingErr error
	var errOnce sync.Once

	for i, batch := range batches {
		i, batch := i, batch
		wp.Submit(func() {
			select {
			case <-ctx.Done():
				errOnce.Do(func() {
					processingErr = ctx.Err()
				})
				return
			default:
			}

			vectors, err := p.client.EmbedBatch(ctx, batch)

			resultsMu.Lock()
			defer resultsMu.Unlock()

			if err != nil {
				errOnce.Do(func() {
					processingErr = fmt.Errorf("batch %d processing error: %v", i, err)
				})
				return
			}

			batchVectors[i] = vectors
		})
	}

	wp.StopWait()

	if processingErr != nil {
		return nil, processingErr
	}

	// 按批次顺序合并，保证结果与输入文本一一对应
	allVectors := make([][]float32, 0, len(texts))
	for _, vectors := range batchVectors {
		allVectors = append(allVectors, vectors...)
	}

	return allVectors, nil
}

// splitIntoBatches 将文本列表分割成多个批次
func splitIntoBatches(texts []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = 1
	}

	batches := make([][]string, 0, (len(texts)+batchSize-1)/batchSize)

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[i:end])
	}

	return batches
}
