package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/lock"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
	"poker-platform/internal/store/memstore"
)

type testServer struct {
	eng *engine.Engine
	st  *memstore.Store
	hub *events.Hub
	srv http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := memstore.New()
	st.AddSetting(model.TableSetting{ID: "nl-1-2", SmallBlind: money.New(1), BigBlind: money.New(2), BuyIn: money.New(100), TurnTime: 30, Seats: 6})
	st.SetAccount("a", money.New(1000))
	st.SetAccount("b", money.New(1000))
	hub := events.NewHub(64)
	eng := engine.New(st, lock.NewLocal(), hub, engine.Options{})
	return &testServer{eng: eng, st: st, hub: hub, srv: NewRouter(NewHandlers(eng, hub, nil))}
}

func (s *testServer) do(t *testing.T, method, path, user, body string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.srv.ServeHTTP(rec, req)
	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func (s *testServer) joinTwo(t *testing.T) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/cash/nl-1-2/join", "a", `{"chips":"100"}`)
	if code != http.StatusOK {
		t.Fatalf("join a: %d %v", code, body)
	}
	tableID, _ := body["table_id"].(string)
	code, body = s.do(t, http.MethodPost, "/api/cash/nl-1-2/join", "b", `{"chips":"100"}`)
	if code != http.StatusOK || body["table_id"] != tableID {
		t.Fatalf("join b: %d %v", code, body)
	}
	return tableID
}

func TestJoinRequiresUser(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodPost, "/api/cash/nl-1-2/join", "", `{"chips":"100"}`)
	if code != http.StatusUnauthorized || body["error"] != "missing_user" {
		t.Fatalf("expected 401 missing_user, got %d %v", code, body)
	}
}

func TestJoinThenStateHidesOtherCards(t *testing.T) {
	s := newTestServer(t)
	tableID := s.joinTwo(t)
	if err := s.eng.Advance(context.Background(), tableID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	code, body := s.do(t, http.MethodGet, "/api/tables/"+tableID+"/state", "a", "")
	if code != http.StatusOK {
		t.Fatalf("state: %d %v", code, body)
	}
	seats, _ := body["seats"].([]any)
	if len(seats) != 2 {
		t.Fatalf("expected 2 seats, got %v", body["seats"])
	}
	for _, raw := range seats {
		seat := raw.(map[string]any)
		_, hasCards := seat["hole_cards"]
		if seat["user_id"] == "a" && !hasCards {
			t.Fatal("viewer must see own cards")
		}
		if seat["user_id"] == "b" && hasCards {
			t.Fatal("viewer must not see opponent cards")
		}
	}
}

func TestActionOutOfTurnIsCoded(t *testing.T) {
	s := newTestServer(t)
	tableID := s.joinTwo(t)
	if err := s.eng.Advance(context.Background(), tableID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	code, body := s.do(t, http.MethodPost, "/api/tables/"+tableID+"/actions", "b", `{"bet_type":"call"}`)
	if code != http.StatusUnprocessableEntity || body["error"] != "wrong_turn" || body["code"] != float64(1001) {
		t.Fatalf("expected 422 wrong_turn, got %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/tables/"+tableID+"/actions", "a", `{"bet_type":"call"}`)
	if code != http.StatusOK {
		t.Fatalf("call: %d %v", code, body)
	}
	if body["turn_place"] != float64(2) {
		t.Fatalf("expected turn to pass to place 2, got %v", body["turn_place"])
	}

	code, body = s.do(t, http.MethodGet, "/api/tables/"+tableID+"/events", "", "")
	if code != http.StatusOK {
		t.Fatalf("events: %d %v", code, body)
	}
	if items, _ := body["items"].([]any); len(items) == 0 {
		t.Fatal("expected buffered events")
	}
}

func TestUnknownTableAndTournament(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/tables/nope/state", "", "")
	if code != http.StatusNotFound || body["code"] != float64(1201) {
		t.Fatalf("expected 404 table_not_found, got %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/tournaments/nope/registration", "a", "")
	if code != http.StatusNotFound || body["error"] != "tournament_not_found" {
		t.Fatalf("expected 404 tournament_not_found, got %d %v", code, body)
	}
}

func TestRebuyValidatesAmount(t *testing.T) {
	s := newTestServer(t)
	tableID := s.joinTwo(t)
	code, body := s.do(t, http.MethodPost, "/api/tables/"+tableID+"/rebuy", "a", `{"amount":"0"}`)
	if code != http.StatusBadRequest || body["error"] != "invalid_amount" {
		t.Fatalf("expected 400 invalid_amount, got %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/tables/"+tableID+"/rebuy", "a", `{"amount":"5000"}`)
	if code != http.StatusPaymentRequired || body["code"] != float64(1101) {
		t.Fatalf("expected 402 insufficient_balance, got %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/tables/"+tableID+"/rebuy", "a", `{"amount":"50"}`)
	if code != http.StatusOK || body["status"] != string(model.InvoiceCompleted) {
		t.Fatalf("expected idle rebuy to complete, got %d %v", code, body)
	}
}

func TestMapEngineError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		slug   string
	}{
		{fmt.Errorf("bet: %w", engine.ErrBetTooSmall), http.StatusUnprocessableEntity, "bet_too_small"},
		{engine.ErrAlreadyRegistered, http.StatusConflict, "already_registered"},
		{engine.ErrInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance"},
		{&engine.GuardError{Transition: "start_game", Reason: "turn not set"}, http.StatusConflict, "transition_blocked"},
		{errors.New("conn reset"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		status, _, slug := MapEngineError(tt.err)
		if status != tt.status || slug != tt.slug {
			t.Fatalf("%v: got %d %q, want %d %q", tt.err, status, slug, tt.status, tt.slug)
		}
	}
}
