package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal/board"
	"github.com/sanLimbu/taskboard-api/internal/client"
)

type app struct {
	server    string
	tokenFile string
	trace     bool
	timeout   time.Duration

	api     *client.Client
	session *client.Session
	board   *board.Board
	tp      *sdktrace.TracerProvider
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Manage the tasks of your board from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	server := os.Getenv("TASKBOARD_URL")
	if server == "" {
		server = "http://localhost:5000"
	}

	cmd.PersistentFlags().StringVar(&a.server, "server", server, "API base URL")
	cmd.PersistentFlags().StringVar(&a.tokenFile, "token-file", defaultTokenFile(), "File storing the session token")
	cmd.PersistentFlags().BoolVar(&a.trace, "trace", false, "Print the request spans to stderr")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", client.DefaultTimeout, "Request timeout")

	cmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
		newHealthCmd(a),
		newTasksCmd(a),
		newBoardCmd(a),
		newStatsCmd(a),
		newSearchCmd(a),
	)

	return cmd
}

func (a *app) init() error {
	if a.trace {
		if err := a.initTracer(); err != nil {
			return err
		}
	}

	api, err := client.New(client.Config{
		BaseURL: a.server,
		Timeout: a.timeout,
	})
	if err != nil {
		return fmt.Errorf("client.New: %w", err)
	}

	token, err := a.readToken()
	if err != nil {
		return err
	}

	a.api = api
	a.session = client.NewSession(token)
	a.board = board.New(api, a.session, board.NewState(), zap.NewNop())

	return nil
}

// initTracer writes every span to stderr.
func (a *app) initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("stdouttrace.New: %w", err)
	}

	a.tp = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(exporter),
	)

	otel.SetTracerProvider(a.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return nil
}

func (a *app) close(ctx context.Context) error {
	if err := a.saveToken(); err != nil {
		return err
	}

	if a.tp != nil {
		if err := a.tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("tp.Shutdown: %w", err)
		}
	}

	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskboard-token"
	}

	return filepath.Join(dir, "taskboard", "token")
}

func (a *app) readToken() (string, error) {
	b, err := os.ReadFile(a.tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("os.ReadFile: %w", err)
	}

	return strings.TrimSpace(string(b)), nil
}

// saveToken persists the session token, a cleared session removes the file.
func (a *app) saveToken() error {
	if a.session == nil {
		return nil
	}

	token := a.session.Token()

	if token == "" {
		if err := os.Remove(a.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("os.Remove: %w", err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0o700); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	if err := os.WriteFile(a.tokenFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	return nil
}
