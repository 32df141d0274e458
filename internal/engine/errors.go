package engine

import (
	"errors"
	"fmt"

	"poker-platform/internal/ledger"
)

var (
	ErrWrongTurn                   = errors.New("wrong_turn")
	ErrTimeExpired                 = errors.New("time_expired")
	ErrInactive                    = errors.New("inactive")
	ErrBetTooSmall                 = errors.New("bet_too_small")
	ErrBetTooBig                   = errors.New("bet_too_big")
	ErrCheckNotAllowed             = errors.New("check_not_allowed")
	ErrUnknownAction               = errors.New("unknown_action")
	ErrInsufficientBalance         = ledger.ErrInsufficientBalance
	ErrTableNotFound               = errors.New("table_not_found")
	ErrTableFull                   = errors.New("table_full")
	ErrPlayerNotFound              = errors.New("player_not_found")
	ErrTournamentNotFound          = errors.New("tournament_not_found")
	ErrTournamentFull              = errors.New("tournament_full")
	ErrAlreadyRegistered           = errors.New("already_registered")
	ErrRegistrationClosed          = errors.New("registration_closed")
	ErrLateRegistrationUnavailable = errors.New("late_registration_unavailable")
	ErrNotRegistered               = errors.New("not_registered")
)

// GuardCode marks a blocked workflow transition.
const GuardCode = 2000

var codes = map[error]int{
	ErrWrongTurn:                   1001,
	ErrTimeExpired:                 1002,
	ErrInactive:                    1003,
	ErrBetTooSmall:                 1004,
	ErrBetTooBig:                   1005,
	ErrCheckNotAllowed:             1006,
	ErrUnknownAction:               1007,
	ErrInsufficientBalance:         1101,
	ErrTableNotFound:               1201,
	ErrTableFull:                   1202,
	ErrPlayerNotFound:              1203,
	ErrTournamentNotFound:          1301,
	ErrTournamentFull:              1302,
	ErrAlreadyRegistered:           1303,
	ErrRegistrationClosed:          1304,
	ErrLateRegistrationUnavailable: 1305,
	ErrNotRegistered:               1306,
}

// CodedError is a validation failure with a stable numeric code. It
// unwraps to its sentinel.
type CodedError struct {
	Code int
	Err  error
}

func (e *CodedError) Error() string { return fmt.Sprintf("%d: %s", e.Code, e.Err) }

func (e *CodedError) Unwrap() error { return e.Err }

func coded(err error) error {
	if code, ok := codes[err]; ok {
		return &CodedError{Code: code, Err: err}
	}
	return err
}

// Code returns the stable code and slug of a validation failure.
func Code(err error) (int, string, bool) {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code, ce.Err.Error(), true
	}
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code, sentinel.Error(), true
		}
	}
	if errors.As(err, new(*GuardError)) {
		return GuardCode, "transition_blocked", true
	}
	return 0, "", false
}

// GuardError reports a transition whose precondition does not hold yet.
// It is expected and retried on the next poll.
type GuardError struct {
	Transition string
	Reason     string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("enter in %s has blocked: %s", e.Transition, e.Reason)
}

func blocked(transition, format string, args ...any) error {
	return &GuardError{Transition: transition, Reason: fmt.Sprintf(format, args...)}
}

func IsGuard(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}
