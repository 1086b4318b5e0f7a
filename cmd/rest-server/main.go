package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/cmd/internal"
	internaldomain "github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/auth"
	"github.com/sanLimbu/taskboard-api/internal/elasticsearch"
	"github.com/sanLimbu/taskboard-api/internal/envvar"
	"github.com/sanLimbu/taskboard-api/internal/kafka"
	"github.com/sanLimbu/taskboard-api/internal/memcached"
	"github.com/sanLimbu/taskboard-api/internal/memory"
	"github.com/sanLimbu/taskboard-api/internal/mongodb"
	"github.com/sanLimbu/taskboard-api/internal/postgresql"
	"github.com/sanLimbu/taskboard-api/internal/rabbitmq"
	"github.com/sanLimbu/taskboard-api/internal/redis"
	"github.com/sanLimbu/taskboard-api/internal/rest"
	"github.com/sanLimbu/taskboard-api/internal/service"
)

const serviceName = "taskboard-api-server"

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":5000", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	if err := envvar.Load(env); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	logger, err := internal.NewLogger(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewLogger")
	}

	metrics, err := internal.NewOTExporter(conf, serviceName)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := newStores(ctx, conf, logger)
	if err != nil {
		return nil, fmt.Errorf("newStores: %w", err)
	}

	tokens, expiration, err := newTokens(conf)
	if err != nil {
		repos.close()

		return nil, fmt.Errorf("newTokens: %w", err)
	}

	secure, _ := conf.Get("COOKIE_SECURE")

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
			)

			h.ServeHTTP(w, r)
		})
	}

	srv := newServer(serverConfig{
		Address:      address,
		Stores:       repos,
		Tokens:       tokens,
		Expiration:   expiration,
		SecureCookie: secure == "true",
		Metrics:      metrics,
		Middlewares:  []func(next http.Handler) http.Handler{otelchi.Middleware(serviceName), logging},
		Logger:       logger,
	})

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()

		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		defer func() {
			_ = logger.Sync()

			repos.close()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	return errC, nil
}

// stores groups the repositories the services use plus what needs closing on shutdown.
type stores struct {
	tasks     service.TaskRepository
	users     service.UserRepository
	search    service.TaskSearchRepository
	msgBroker service.TaskMessageBrokerRepository
	closers   []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// newStores builds the repositories selected with TASKS_STORE, MESSAGE_BROKER, MEMCACHED_HOST,
// REDIS_HOST and ELASTICSEARCH_URL.
func newStores(ctx context.Context, conf *envvar.Configuration, logger *zap.Logger) (res *stores, err error) {
	res = &stores{}

	defer func() {
		if err != nil {
			res.close()
		}
	}()

	kind, err := conf.GetDefault("TASKS_STORE", "postgresql")
	if err != nil {
		return res, fmt.Errorf("conf.Get TASKS_STORE: %w", err)
	}

	var tasks service.TaskRepository

	switch kind {
	case "postgresql":
		pool, err := internal.NewPostgreSQL(ctx, conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewPostgreSQL: %w", err)
		}

		res.closers = append(res.closers, pool.Close)

		tasks = postgresql.NewTask(pool)
		res.users = postgresql.NewUser(pool)
	case "mongodb":
		db, err := internal.NewMongoDB(ctx, conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewMongoDB: %w", err)
		}

		res.closers = append(res.closers, func() { _ = db.Close(context.Background()) })

		tasks = mongodb.NewTask(db.Client, db.Database)
		res.users = mongodb.NewUser(db.Database)
	case "memory":
		tasks = memory.NewTask()
		res.users = memory.NewUser()
	default:
		return res, internaldomain.NewErrorf(internaldomain.ErrorCodeInvalidArgument, "unknown tasks store %q", kind)
	}

	if host, _ := conf.Get("REDIS_HOST"); host != "" {
		rdb, err := internal.NewRedis(ctx, conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewRedis: %w", err)
		}

		res.closers = append(res.closers, func() { _ = rdb.Close() })

		tasks = redis.NewTask(rdb, tasks, 5*time.Minute, logger)
	}

	if host, _ := conf.Get("MEMCACHED_HOST"); host != "" {
		mc, err := internal.NewMemcached(conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewMemcached: %w", err)
		}

		tasks = memcached.NewTask(mc, tasks, logger)
	}

	res.tasks = tasks

	if url, _ := conf.Get("ELASTICSEARCH_URL"); url != "" {
		es, err := internal.NewElasticSearch(conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewElasticSearch: %w", err)
		}

		res.search = elasticsearch.NewTask(es)
	}

	broker, err := conf.Get("MESSAGE_BROKER")
	if err != nil {
		return res, fmt.Errorf("conf.Get MESSAGE_BROKER: %w", err)
	}

	switch broker {
	case "kafka":
		producer, err := internal.NewKafkaProducer(conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewKafkaProducer: %w", err)
		}

		res.closers = append(res.closers, producer.Close)
		res.msgBroker = kafka.NewTask(producer.Producer, producer.Topic)
	case "rabbitmq":
		rmq, err := internal.NewRabbitMQ(conf)
		if err != nil {
			return res, fmt.Errorf("internal.NewRabbitMQ: %w", err)
		}

		res.closers = append(res.closers, rmq.Close)
		res.msgBroker = rabbitmq.NewTask(rmq.Channel)
	case "", "none":
	default:
		return res, internaldomain.NewErrorf(internaldomain.ErrorCodeInvalidArgument, "unknown message broker %q", broker)
	}

	return res, nil
}

func newTokens(conf *envvar.Configuration) (*auth.Tokens, time.Duration, error) {
	secret, err := conf.Get("JWT_SECRET")
	if err != nil {
		return nil, 0, fmt.Errorf("conf.Get JWT_SECRET: %w", err)
	}

	expire, err := conf.Get("JWT_EXPIRE")
	if err != nil {
		return nil, 0, fmt.Errorf("conf.Get JWT_EXPIRE: %w", err)
	}

	expiration, err := auth.ParseExpiration(expire)
	if err != nil {
		return nil, 0, fmt.Errorf("auth.ParseExpiration: %w", err)
	}

	tokens, err := auth.NewTokens(secret, expiration)
	if err != nil {
		return nil, 0, fmt.Errorf("auth.NewTokens: %w", err)
	}

	return tokens, expiration, nil
}

type serverConfig struct {
	Address      string
	Stores       *stores
	Tokens       *auth.Tokens
	Expiration   time.Duration
	SecureCookie bool
	Metrics      http.Handler
	Middlewares  []func(next http.Handler) http.Handler
	Logger       *zap.Logger
}

func newServer(conf serverConfig) *http.Server {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))

	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	users := service.NewUser(conf.Logger, conf.Stores.users, conf.Tokens)
	tasks := service.NewTask(conf.Logger, conf.Stores.tasks, conf.Stores.search, conf.Stores.msgBroker)

	rest.RegisterHealth(router)
	rest.RegisterOpenAPI(router)
	rest.NewUserHandler(users, conf.Logger, conf.Expiration, conf.SecureCookie).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(rest.Authenticate(users, conf.Logger))
		rest.NewTaskHandler(tasks, conf.Logger).Register(r)
	})

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(100, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Minute})
	lmt.SetMessage(`{"success":false,"message":"too many requests"}`)
	lmt.SetMessageContentType("application/json")

	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
