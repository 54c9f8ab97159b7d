package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"eventplanner/internal/domain"
)

const maxBodyBytes = 1 << 20

var supportedLanguages = language.NewMatcher([]language.Tag{language.German, language.English})

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a size-limited JSON body and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.New(domain.CodeInvalidArgument, "request body is empty")
		}
		return domain.Wrap(domain.CodeInvalidArgument, "invalid request body", err)
	}
	return nil
}

func statusOf(code domain.Code) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeMissingPermission:
		return http.StatusForbidden
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a localized error body. Internal errors are logged and
// never leak their message.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	status := statusOf(code)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	} else {
		a.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "error", err)
	}
	name := domain.CodeName(err)
	writeJSON(w, status, errorResponse{
		Code:  name,
		Error: a.translator.T(a.locale(r), "error."+name, nil),
	})
}

// locale picks the best supported language from Accept-Language.
func (a *api) locale(r *http.Request) string {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return a.defaultLocale
	}
	tag, _ := language.MatchStrings(supportedLanguages, header)
	base, _ := tag.Base()
	return base.String()
}
