package internal

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/envvar"
	"github.com/sanLimbu/taskboard-api/internal/mongodb"
)

// MongoDB groups the client and the database the stores use.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB using configuration defined in environment variables and creates the
// indexes the stores need.
func NewMongoDB(ctx context.Context, conf *envvar.Configuration) (*MongoDB, error) {
	uri, err := conf.Get("MONGODB_URI")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get MONGODB_URI")
	}

	name, err := conf.GetDefault("MONGODB_DATABASE", "taskboard")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get MONGODB_DATABASE")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "mongo.Connect")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)

		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Ping")
	}

	database := client.Database(name)

	if err := mongodb.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("mongodb.EnsureIndexes: %w", err)
	}

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

// Close ...
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
