package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/game/viewmodel"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
)

// Engine is the game engine surface exposed over HTTP.
type Engine interface {
	JoinCashTable(ctx context.Context, settingID, userID string, chips money.Money) (*model.Seat, error)
	LeaveCashTable(ctx context.Context, tableID, userID string) error
	Rebuy(ctx context.Context, tableID, userID string, amount money.Money) (*model.Invoice, error)
	Bet(ctx context.Context, tableID string, a engine.Action) error
	State(ctx context.Context, tableID, viewerID string) (viewmodel.TableView, error)

	Register(ctx context.Context, tournamentID, userID string) error
	RegisterLate(ctx context.Context, tournamentID, userID string) (string, error)
	CancelRegistration(ctx context.Context, tournamentID, userID string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	eng Engine
	hub *events.Hub
	db  Pinger
}

func NewHandlers(eng Engine, hub *events.Hub, db Pinger) *Handlers {
	return &Handlers{eng: eng, hub: hub, db: db}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.db == nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

type moneyRequest struct {
	Chips  money.Money `json:"chips"`
	Amount money.Money `json:"amount"`
}

func decodeMoney(w http.ResponseWriter, r *http.Request) (moneyRequest, bool) {
	var req moneyRequest
	if r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return req, false
	}
	return req, true
}

func (h *Handlers) JoinCash() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeMoney(w, r)
		if !ok {
			return
		}
		seat, err := h.eng.JoinCashTable(r.Context(), chi.URLParam(r, "setting_id"), UserFromContext(r.Context()), req.Chips)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"table_id": seat.TableID, "place": seat.Place, "stack": seat.Stack, "status": seat.Status})
	}
}

func (h *Handlers) Leave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.eng.LeaveCashTable(r.Context(), chi.URLParam(r, "table_id"), UserFromContext(r.Context())); err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *Handlers) Rebuy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeMoney(w, r)
		if !ok {
			return
		}
		if !req.Amount.IsPositive() {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		inv, err := h.eng.Rebuy(r.Context(), chi.URLParam(r, "table_id"), UserFromContext(r.Context()), req.Amount)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

type actionRequest struct {
	BetType string      `json:"bet_type"`
	Amount  money.Money `json:"amount"`
}

func (h *Handlers) Action() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricActionSubmitTotal.Add(1)
		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricActionSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		userID := UserFromContext(r.Context())
		tableID := chi.URLParam(r, "table_id")
		err := h.eng.Bet(r.Context(), tableID, engine.Action{UserID: userID, BetType: model.BetType(req.BetType), Amount: req.Amount})
		if err != nil {
			metricActionSubmitErrors.Add(1)
			writeEngineError(w, r, err)
			return
		}
		view, err := h.eng.State(r.Context(), tableID, userID)
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// State serves the table as the caller sees it. Without a user header
// no hole cards are shown.
func (h *Handlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricStateReadsTotal.Add(1)
		view, err := h.eng.State(r.Context(), chi.URLParam(r, "table_id"), r.Header.Get(UserHeader))
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// Events replays buffered table events newer than ?after.
func (h *Handlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := h.hub.Buffer(chi.URLParam(r, "table_id")).ReplayAfter(r.URL.Query().Get("after"))
		if items == nil {
			items = []events.Event{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func (h *Handlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.eng.Register(r.Context(), chi.URLParam(r, "tournament_id"), UserFromContext(r.Context())); err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *Handlers) RegisterLate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID, err := h.eng.RegisterLate(r.Context(), chi.URLParam(r, "tournament_id"), UserFromContext(r.Context()))
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "table_id": tableID})
	}
}

func (h *Handlers) CancelRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.eng.CancelRegistration(r.Context(), chi.URLParam(r, "tournament_id"), UserFromContext(r.Context())); err != nil {
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
