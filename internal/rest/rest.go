// Package rest implements the HTTP transport: JSON handlers on a chi router, the authentication
// middleware and the OpenAPI 3 document describing them.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

// ErrorResponse represents a response containing an error message.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func renderErrorResponse(ctx context.Context, w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	resp := ErrorResponse{Message: "internal error"}
	status := http.StatusInternalServerError

	var ierr *internal.Error
	if errors.As(err, &ierr) {
		switch ierr.Code() {
		case internal.ErrorCodeNotFound:
			status = http.StatusNotFound
			resp.Message = ierr.Message()
		case internal.ErrorCodeInvalidArgument:
			status = http.StatusBadRequest
			resp.Message = "Validation failed"
			resp.Errors = fieldErrors(err)
		case internal.ErrorCodeUnauthenticated:
			status = http.StatusUnauthorized
			resp.Message = ierr.Message()
		case internal.ErrorCodeConflict:
			status = http.StatusConflict
			resp.Message = ierr.Message()
			resp.Errors = fieldErrors(err)
		}
	}

	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)

		if status == http.StatusInternalServerError {
			logger.Error(msg, zap.Error(err))
		} else {
			logger.Info(msg, zap.Int("status", status), zap.Error(err))
		}
	}

	renderResponse(w, resp, status)
}

func renderResponse(w http.ResponseWriter, res interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.WriteHeader(status)

	_, _ = w.Write(content)
}

// fieldErrors flattens the validation errors in the chain, nested structs use dotted names.
func fieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}

	res := make(map[string]string)
	flatten(res, "", verrs)

	return res
}

func flatten(dst map[string]string, prefix string, verrs validation.Errors) {
	for field, err := range verrs {
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}

		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(dst, name, nested)

			continue
		}

		dst[name] = err.Error()
	}
}

func decodeRequest(r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder")
	}

	return nil
}
