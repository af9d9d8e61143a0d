package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/obs"
)

type errorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// writeError renders err as {status, message, timestamp}. Untyped errors are
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	code := apperr.HTTPStatus(kind)
	switch kind {
	case apperr.Unauthorized, apperr.AccessDenied:
		annotate(r, func(l *requestLog) { l.logType = logTypeSecurity })
	case apperr.BusinessRule, apperr.Validation, apperr.NotFound:
		annotate(r, func(l *requestLog) {
			if l.logType == logTypeApplication {
				l.logType = logTypeBusiness
			}
		})
	case apperr.Internal:
		obs.Logger().Error("unhandled error",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	if kind == apperr.Unauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="`+appName+`"`)
	}
	writeJSON(w, code, errorResponse{
		Status:    code,
		Message:   apperr.PublicMessage(err),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func notFound(r *http.Request) error {
	return apperr.NotFoundf("no resource at %s", r.URL.Path)
}

func methodNotSupported(r *http.Request) error {
	return &apperr.Error{
		Kind:    apperr.MethodNotSupported,
		Message: "method " + r.Method + " is not supported on " + r.URL.Path,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validationf("request body is required")
		}
		return apperr.Wrap(apperr.Validation, err, "malformed request body: "+err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.Validationf("unexpected data after JSON body")
	}
	return nil
}

// subpath splits what follows prefix into non-empty segments.
func subpath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid identifier: %s", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, apperr.Validationf("%s: is required", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validationf("%s: must be an integer", name)
	}
	return v, nil
}
