package internal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/envvar"
)

// NewPostgreSQL instantiates the PostgreSQL database using configuration defined in environment variables.
func NewPostgreSQL(ctx context.Context, conf *envvar.Configuration) (*pgxpool.Pool, error) {
	values := make(map[string]string)

	for _, key := range []string{
		"DATABASE_HOST",
		"DATABASE_PORT",
		"DATABASE_USERNAME",
		"DATABASE_PASSWORD",
		"DATABASE_NAME",
		"DATABASE_SSLMODE",
	} {
		res, err := conf.Get(key)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get %s", key)
		}

		values[key] = res
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(values["DATABASE_USERNAME"], values["DATABASE_PASSWORD"]),
		Host:   fmt.Sprintf("%s:%s", values["DATABASE_HOST"], values["DATABASE_PORT"]),
		Path:   values["DATABASE_NAME"],
	}

	q := dsn.Query()
	q.Add("sslmode", values["DATABASE_SSLMODE"])

	dsn.RawQuery = q.Encode()

	pool, err := pgxpool.New(ctx, dsn.String())
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pgxpool.New")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Ping")
	}

	return pool, nil
}
