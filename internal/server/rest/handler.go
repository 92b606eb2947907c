package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// appHandler is a handler that reports failures by returning them.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// handle adapts h to http.HandlerFunc. A returned error is logged and answered
// with {"detail": ...} and the status toHTTPError picks for it.
func (s *Server) handle(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		he := toHTTPError(err)
		ctx := r.Context()
		args := []any{
			"code", he.Code,
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", middleware.GetReqID(ctx),
		}
		if cause := errors.Unwrap(he); cause != nil && cause.Error() != he.Message {
			args = append(args, "cause", cause)
		}

		if he.Code >= http.StatusInternalServerError {
			s.logger.Error(ctx, "request failed", args...)
		} else {
			s.logger.Debug(ctx, "client error response", args...)
		}

		if w.Header().Get(headerContentType) != "" {
			s.logger.Warn(ctx, "handler returned error after writing response", args...)
			return
		}
		respondDetail(w, he.Code, he.Message)
	}
}
