// Package service orchestrates the extraction pipeline: match files, build
// descriptors, then push them through the enabled upload channels.
package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/file-extractor/internal/extractor/model"
	"github.com/Laisky/file-extractor/internal/extractor/scan"
)

// ErrBadInputDir is returned when the input dir is missing or not a directory.
var ErrBadInputDir = errors.New("input dir does not exist or is not a directory")

// RowStore is the raw metadata channel of the remote store.
type RowStore interface {
	InsertRows(ctx context.Context, table model.TableID, rows []model.RawRow) error
}

// BlobStore is the file content channel of the remote store.
type BlobStore interface {
	UploadBlob(ctx context.Context,
		obj *model.FileObject, opt model.UploadOptions) (receipt string, err error)
}

// ProcessConfig controls one pipeline run.
type ProcessConfig struct {
	InputDir  string
	Pattern   string
	Recursive bool
	// UploadRaw enables the metadata channel, UploadFiles the file content
	// channel. With both disabled a run is discovery only.
	UploadRaw   bool
	UploadFiles bool
	Overwrite   bool
	IgnoreMeta  bool
	RawTable    model.TableID
	// Concurrency bounds parallel file uploads, values below 2 keep the
	// uploads strictly sequential.
	Concurrency int
}

// UploadResult is the outcome of one file upload.
type UploadResult struct {
	ExternalID string
	Receipt    string
	Err        error
	Elapsed    time.Duration
}

// Summary aggregates one pipeline run.
type Summary struct {
	Matched   int
	Published int
	Uploaded  int
	Failed    int
	Results   []UploadResult
}

// Pipeline wires the two upload channels behind one run entrypoint. The two
// channels never depend on each other's outcome.
type Pipeline struct {
	logger logSDK.Logger
	rows   RowStore
	blobs  BlobStore
}

// NewPipeline creates the orchestrator. Stores for disabled channels may be
// nil.
func NewPipeline(logger logSDK.Logger, rows RowStore, blobs BlobStore) *Pipeline {
	return &Pipeline{logger: logger, rows: rows, blobs: blobs}
}

// Process finds files under cfg.InputDir and pushes every successfully built
// descriptor to every enabled channel, raw metadata first. A raw publish
// failure is logged and counted but never blocks the file uploads.
func (p *Pipeline) Process(ctx context.Context, cfg ProcessConfig) (*Summary, error) {
	fi, err := os.Stat(cfg.InputDir)
	if err != nil || !fi.IsDir() {
		return nil, errors.Wrapf(ErrBadInputDir, "%q", cfg.InputDir)
	}

	paths, err := scan.Match(p.logger, cfg.InputDir, cfg.Pattern, cfg.Recursive)
	if err != nil {
		return nil, errors.Wrap(err, "match files")
	}

	objs, err := model.NewFileObjects(cfg.InputDir, paths)
	if err != nil {
		return nil, errors.Wrap(err, "build file objects")
	}

	summary := &Summary{Matched: len(objs)}

	if cfg.UploadRaw {
		rows := make([]model.RawRow, 0, len(objs))
		for _, obj := range objs {
			rows = append(rows, obj.RawColumns())
		}

		if err = p.rows.InsertRows(ctx, cfg.RawTable, rows); err != nil {
			p.logger.Error("publish metadata to raw",
				zap.Error(err),
				zap.String("table", cfg.RawTable.String()))
		} else {
			summary.Published = len(rows)
		}
	}

	if cfg.UploadFiles {
		p.uploadFiles(ctx, cfg, objs, summary)
	}

	p.logger.Info("pipeline finished",
		zap.Int("matched", summary.Matched),
		zap.Int("published", summary.Published),
		zap.Int("uploaded", summary.Uploaded),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// uploadFiles pushes file content in the supplied order. One failing item is
// logged and counted but never halts the remaining items; results stay
// slotted by input index so every failure is attributable to its external id.
// Cancellation stops issuing new uploads, in-flight ones finish on their own.
func (p *Pipeline) uploadFiles(ctx context.Context,
	cfg ProcessConfig, objs []*model.FileObject, summary *Summary) {
	opt := model.UploadOptions{
		Overwrite:      cfg.Overwrite,
		IgnoreMetadata: cfg.IgnoreMeta,
	}
	results := make([]UploadResult, len(objs))

	if cfg.Concurrency > 1 {
		var pool errgroup.Group
		pool.SetLimit(cfg.Concurrency)
		for i, obj := range objs {
			if ctx.Err() != nil {
				break
			}

			pool.Go(func() error {
				results[i] = p.uploadOne(ctx, i, len(objs), obj, opt)
				return nil
			})
		}
		_ = pool.Wait()
	} else {
		for i, obj := range objs {
			if ctx.Err() != nil {
				break
			}

			results[i] = p.uploadOne(ctx, i, len(objs), obj, opt)
		}
	}

	for i := range results {
		if results[i].ExternalID == "" { // cancelled before this item started
			continue
		}

		if results[i].Err != nil {
			summary.Failed++
		} else {
			summary.Uploaded++
		}
		summary.Results = append(summary.Results, results[i])
	}
}

func (p *Pipeline) uploadOne(ctx context.Context,
	i, total int, obj *model.FileObject, opt model.UploadOptions) UploadResult {
	index := fmt.Sprintf("[%d:%d]", i, total-1)
	p.logger.Debug("starting upload",
		zap.String("index", index),
		zap.String("file", obj.Path))

	start := time.Now()
	receipt, err := p.blobs.UploadBlob(ctx, obj, opt)
	res := UploadResult{
		ExternalID: obj.ExternalID,
		Receipt:    receipt,
		Err:        err,
		Elapsed:    time.Since(start),
	}

	if err != nil {
		p.logger.Error("failed to upload",
			zap.String("external_id", obj.ExternalID),
			zap.Error(err))
		return res
	}

	p.logger.Info("finished upload",
		zap.String("index", index),
		zap.String("external_id", obj.ExternalID),
		zap.Duration("cost", res.Elapsed))
	p.logger.Debug("upload receipt",
		zap.String("index", index),
		zap.String("receipt", receipt))
	return res
}
