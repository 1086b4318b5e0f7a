package internal

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/envvar"
)

// NewLogger instantiates the production logger, writing JSON to stdout. When LOG_FILE is defined the
// entries are also written to that file, which is rotated once it reaches LOG_FILE_MAX_SIZE megabytes.
func NewLogger(conf *envvar.Configuration) (*zap.Logger, error) {
	filename, err := conf.Get("LOG_FILE")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get LOG_FILE")
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)

	if l, _ := conf.Get("LOG_LEVEL"); l != "" {
		if err := level.UnmarshalText([]byte(l)); err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "level.UnmarshalText")
		}
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if filename != "" {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filename,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}
