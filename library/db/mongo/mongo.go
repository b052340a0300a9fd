// Package mongo provides a wrapper for the MongoDB client.
package mongo

import (
	"context"
	"net/url"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mongoLib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 30 * time.Second

// DB is the handle the daos depend on.
type DB interface {
	Close(ctx context.Context) error
	GetCol(dbName, colName string) *mongoLib.Collection
}

// DialInfo defines the MongoDB connection information.
type DialInfo struct {
	Addr,
	User,
	Pwd string
	AuthDB string
}

type db struct {
	cli    *mongoLib.Client
	logger logSDK.Logger
}

// seams for tests
var (
	connectMongo = func(ctx context.Context, clientOpts *options.ClientOptions) (*mongoLib.Client, error) {
		return mongoLib.Connect(ctx, clientOpts)
	}
	pingMongo = func(ctx context.Context, cli *mongoLib.Client) error {
		return cli.Ping(ctx, readpref.Primary())
	}
	disconnectMongo = func(ctx context.Context, cli *mongoLib.Client) error {
		return cli.Disconnect(ctx)
	}
)

// buildMongoURI builds a MongoDB connection URI from the given dial info.
func buildMongoURI(dialInfo DialInfo) string {
	uri := &url.URL{
		Scheme: "mongodb",
		Host:   dialInfo.Addr,
		Path:   "/",
	}
	if dialInfo.User != "" || dialInfo.Pwd != "" {
		uri.User = url.UserPassword(dialInfo.User, dialInfo.Pwd)
	}
	if dialInfo.AuthDB != "" {
		query := url.Values{}
		query.Set("authSource", dialInfo.AuthDB)
		uri.RawQuery = query.Encode()
	}
	return uri.String()
}

// NewDB dials one client and verifies connectivity with a bounded ping.
// The extractor runs to completion, so there is no pooling or reconnect
// machinery beyond what the driver does itself.
func NewDB(ctx context.Context, logger logSDK.Logger, dialInfo DialInfo) (DB, error) {
	logger.Info("try to connect to mongodb",
		zap.String("addr", dialInfo.Addr))

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(buildMongoURI(dialInfo)).
		SetConnectTimeout(defaultTimeout).
		SetServerSelectionTimeout(defaultTimeout).
		SetRetryWrites(true)

	cli, err := connectMongo(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	if err = pingMongo(ctx, cli); err != nil {
		_ = disconnectMongo(ctx, cli)
		return nil, errors.Wrap(err, "ping")
	}

	return &db{cli: cli, logger: logger}, nil
}

func (d *db) GetCol(dbName, colName string) *mongoLib.Collection {
	return d.cli.Database(dbName).Collection(colName)
}

func (d *db) Close(ctx context.Context) error {
	if err := disconnectMongo(ctx, d.cli); err != nil {
		return errors.Wrap(err, "disconnect")
	}

	return nil
}
