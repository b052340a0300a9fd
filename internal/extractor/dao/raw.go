// Package dao writes extracted file data to the remote stores.
package dao

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Laisky/file-extractor/internal/extractor/model"
	"github.com/Laisky/file-extractor/library/db/mongo"
)

// seam for tests
var bulkWriteRows = func(ctx context.Context,
	col *mongoLib.Collection, models []mongoLib.WriteModel) error {
	_, err := col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

// Raw publishes metadata rows into the raw table store.
type Raw struct {
	logger logSDK.Logger
	db     mongo.DB
}

// NewRaw creates the raw metadata publisher.
func NewRaw(logger logSDK.Logger, db mongo.DB) *Raw {
	return &Raw{logger: logger, db: db}
}

// InsertRows upserts all rows as one batch keyed by external id, so repeated
// runs overwrite instead of duplicate. Database and collection are created
// implicitly on first write. The batch succeeds or fails as a whole, there is
// no partial retry here.
func (d *Raw) InsertRows(ctx context.Context, table model.TableID, rows []model.RawRow) error {
	if len(rows) == 0 {
		return nil
	}

	writes := make([]mongoLib.WriteModel, 0, len(rows))
	for _, row := range rows {
		doc := bson.M{}
		for k, v := range row.Document() {
			doc[k] = v
		}

		writes = append(writes, mongoLib.NewReplaceOneModel().
			SetFilter(bson.M{"external_id": row.Key}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	start := time.Now()
	if err := bulkWriteRows(ctx, d.db.GetCol(table.Database, table.Table), writes); err != nil {
		return errors.Wrapf(err, "insert %d rows into %s", len(writes), table)
	}

	d.logger.Info("uploaded rows to raw",
		zap.Int("rows", len(writes)),
		zap.String("table", table.String()),
		zap.Duration("cost", time.Since(start)))
	return nil
}
