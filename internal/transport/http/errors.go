package httptransport

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"poker-platform/internal/engine"
)

// MapEngineError turns an engine error into a status, numeric code and
// slug. Unknown errors are internal.
func MapEngineError(err error) (int, int, string) {
	code, slug, ok := engine.Code(err)
	if !ok {
		return http.StatusInternalServerError, 0, "internal_error"
	}
	switch {
	case errors.Is(err, engine.ErrTableNotFound),
		errors.Is(err, engine.ErrPlayerNotFound),
		errors.Is(err, engine.ErrTournamentNotFound),
		errors.Is(err, engine.ErrNotRegistered):
		return http.StatusNotFound, code, slug
	case errors.Is(err, engine.ErrInsufficientBalance):
		return http.StatusPaymentRequired, code, slug
	case errors.Is(err, engine.ErrTableFull),
		errors.Is(err, engine.ErrTournamentFull),
		errors.Is(err, engine.ErrAlreadyRegistered),
		errors.Is(err, engine.ErrRegistrationClosed),
		errors.Is(err, engine.ErrLateRegistrationUnavailable),
		engine.IsGuard(err):
		return http.StatusConflict, code, slug
	default:
		return http.StatusUnprocessableEntity, code, slug
	}
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, slug := MapEngineError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("engine call failed")
	}
	writeCodedError(w, status, code, slug)
}
