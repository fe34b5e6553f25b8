// Package ingestion parses bulk sales files and loads them in bounded
// batches, tracking progress and the upload record lifecycle.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"app/cache"
	"app/database"
	"app/models"

	"github.com/google/uuid"
)

// BatchSize bounds peak memory per insert. Batches go to storage
// sequentially so a constrained connection pool is never saturated.
const BatchSize = 1000

// Progress is emitted after every batch with cumulative counts.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Imported  int `json:"imported"`
	Errors    int `json:"errors"`
}

// ProgressFunc receives incremental feedback during an import. May be nil.
type ProgressFunc func(Progress)

// Pipeline ingests raw tabular data into the transactions table.
type Pipeline struct {
	store     database.Store
	cache     *cache.Cache
	batchSize int
}

func NewPipeline(store database.Store, c *cache.Cache) *Pipeline {
	return &Pipeline{store: store, cache: c, batchSize: BatchSize}
}

// ImportFile runs the pipeline against a file on disk.
func (p *Pipeline) ImportFile(ctx context.Context, path, uploadedBy string, onProgress ProgressFunc) (models.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ImportSummary{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.ImportSummary{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return p.Import(ctx, f, info.Name(), info.Size(), uploadedBy, onProgress)
}

// ImportBuffer runs the pipeline against an in-memory buffer.
func (p *Pipeline) ImportBuffer(ctx context.Context, data []byte, fileName, uploadedBy string, onProgress ProgressFunc) (models.ImportSummary, error) {
	return p.Import(ctx, bytes.NewReader(data), fileName, int64(len(data)), uploadedBy, onProgress)
}

// Import parses r, inserts the records in batches, and reports a summary.
// Rows that fail mapping are dropped; duplicate business keys are skipped
// by the insert; a failed batch counts all its rows as errors and the
// import continues. Only a fatal parse or storage error aborts, marking
// the upload record failed.
func (p *Pipeline) Import(ctx context.Context, r io.Reader, fileName string, fileSize int64, uploadedBy string, onProgress ProgressFunc) (models.ImportSummary, error) {
	upload := &models.UploadRecord{
		ID:         uuid.NewString(),
		FileName:   fileName,
		FileSize:   fileSize,
		Status:     models.UploadStatusProcessing,
		UploadedBy: uploadedBy,
	}
	if err := p.store.CreateUpload(ctx, upload); err != nil {
		return models.ImportSummary{}, err
	}

	records, total, err := Parse(r)
	if err != nil {
		p.failUpload(ctx, upload, err)
		return models.ImportSummary{TotalRecords: total}, err
	}
	dropped := total - len(records)
	log.Printf("📥 [IMPORT] %s: %d rows parsed, %d dropped during mapping", fileName, total, dropped)

	imported := 0
	errCount := 0
	attempted := 0
	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		n, err := p.store.InsertTransactions(ctx, batch)
		if err != nil {
			if database.Classify(err) == database.KindConnectivity {
				p.failUpload(ctx, upload, err)
				return models.ImportSummary{TotalRecords: total, Imported: imported, Errors: errCount}, err
			}
			log.Printf("❌ [IMPORT] batch %d-%d failed: %v", start, end, err)
			errCount += len(batch)
		} else {
			imported += int(n)
		}
		attempted += len(batch)

		if onProgress != nil {
			onProgress(Progress{
				Processed: dropped + attempted,
				Total:     total,
				Imported:  imported,
				Errors:    errCount,
			})
		}
	}

	// New data invalidates every cached aggregate.
	p.cache.Clear()

	upload.TotalRecords = total
	upload.Imported = imported
	upload.Failed = errCount
	upload.Status = models.UploadStatusCompleted
	if err := p.store.UpdateUpload(ctx, upload); err != nil {
		log.Printf("⚠️ [IMPORT] failed to finalize upload record %s: %v", upload.ID, err)
	}

	log.Printf("✅ [IMPORT] %s completed - Total: %d, Imported: %d, Errors: %d", fileName, total, imported, errCount)
	return models.ImportSummary{
		Success:      true,
		TotalRecords: total,
		Imported:     imported,
		Errors:       errCount,
	}, nil
}

func (p *Pipeline) failUpload(ctx context.Context, upload *models.UploadRecord, cause error) {
	msg := cause.Error()
	upload.Status = models.UploadStatusFailed
	upload.ErrorMessage = &msg
	if err := p.store.UpdateUpload(ctx, upload); err != nil {
		log.Printf("⚠️ [IMPORT] failed to mark upload record %s failed: %v", upload.ID, err)
	}
}
