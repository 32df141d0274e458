// Command dumb-bot plays a cash table in memory with bots making random
// legal moves and prints every hand.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"poker-platform/internal/config"
	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/game/viewmodel"
	"poker-platform/internal/lock"
	"poker-platform/internal/model"
	"poker-platform/internal/money"
	"poker-platform/internal/store/memstore"
)

const settingID = "sim-1-2"

// clock is moved forward by the simulator instead of waiting on timers.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// actionPrinter prints player actions as they are committed.
type actionPrinter struct{}

func (actionPrinter) Publish(_, event, _ string, data any) {
	a, ok := data.(events.Action)
	if event != events.PlayerAction || !ok {
		return
	}
	line := fmt.Sprintf("%-8s %-6s %-10s %s", a.Round, a.UserID, a.BetType, a.Amount)
	if a.Auto {
		line += pterm.Gray(" (auto)")
	}
	pterm.Println("  " + line)
}

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		pterm.Fatal.Println(err)
	}
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	buyIn, err := money.Parse(cfg.BuyIn)
	if err != nil {
		pterm.Fatal.Printfln("buy-in: %v", err)
	}
	balance, err := money.Parse(cfg.Balance)
	if err != nil {
		pterm.Fatal.Printfln("balance: %v", err)
	}

	st := memstore.New()
	st.AddSetting(model.TableSetting{
		ID:         settingID,
		Name:       "Simulator NL 1/2",
		SmallBlind: money.New(1),
		BigBlind:   money.New(2),
		BuyIn:      buyIn,
		TurnTime:   30,
		Seats:      cfg.Bots,
	})
	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	st.SetClock(clk.Now)
	rnd := rand.New(rand.NewSource(cfg.Seed))
	eng := engine.New(st, lock.NewLocal(), actionPrinter{}, engine.Options{
		Now:  clk.Now,
		Rand: rand.New(rand.NewSource(cfg.Seed + 1)),
	})
	ctx := context.Background()

	var tableID string
	for i := 1; i <= cfg.Bots; i++ {
		id := fmt.Sprintf("bot%d", i)
		st.SetAccount(id, balance)
		seat, err := eng.JoinCashTable(ctx, settingID, id, buyIn)
		if err != nil {
			pterm.Fatal.Printfln("join %s: %v", id, err)
		}
		tableID = seat.TableID
	}
	pterm.DefaultHeader.Println(fmt.Sprintf("%d bots at table %s", cfg.Bots, tableID))

	for hand := 1; hand <= cfg.Hands; hand++ {
		clk.Advance(time.Duration(model.RoundExpiration+1) * time.Second)
		if err := eng.Advance(ctx, tableID); err != nil {
			pterm.Fatal.Printfln("start hand: %v", err)
		}
		view, err := eng.State(ctx, tableID, "")
		if err != nil {
			pterm.Fatal.Println(err)
		}
		if view.State != string(model.StateInProgress) {
			pterm.Warning.Printfln("no hand could start (%s), stopping", view.State)
			break
		}
		pterm.DefaultSection.Printfln("Hand %d  dealer %d  sb %d  bb %d", hand, view.DealerPlace, view.SmallBlindPlace, view.BigBlindPlace)
		if err := playHand(ctx, eng, rnd, tableID); err != nil {
			pterm.Error.Printfln("hand %d: %v", hand, err)
			break
		}
		view, err = eng.State(ctx, tableID, "")
		if err != nil {
			pterm.Fatal.Println(err)
		}
		printResult(view)
	}
	printBalances(st, cfg.Bots)
}

func playHand(ctx context.Context, eng *engine.Engine, rnd *rand.Rand, tableID string) error {
	for i := 0; i < 500; i++ {
		view, err := eng.State(ctx, tableID, "")
		if err != nil {
			return err
		}
		if view.State == string(model.StateFinished) {
			return nil
		}
		seat := seatAt(view, view.TurnPlace)
		if view.State != string(model.StateInProgress) || seat == nil {
			if err := eng.Advance(ctx, tableID); err != nil {
				return err
			}
			continue
		}
		if err := act(ctx, eng, rnd, tableID, view, seat); err != nil {
			return err
		}
		if err := eng.Advance(ctx, tableID); err != nil {
			return err
		}
	}
	return fmt.Errorf("hand did not finish")
}

func seatAt(view viewmodel.TableView, place int) *viewmodel.SeatView {
	for i := range view.Seats {
		if view.Seats[i].Place == place {
			return &view.Seats[i]
		}
	}
	return nil
}

// act tries a random move and falls back to the cheapest legal one.
func act(ctx context.Context, eng *engine.Engine, rnd *rand.Rand, tableID string, view viewmodel.TableView, s *viewmodel.SeatView) error {
	allIn := s.Stack.Add(s.Bet)
	var tries []engine.Action
	roll := rnd.Intn(100)
	switch {
	case s.ToCall.IsZero() && roll < 30:
		tries = append(tries, engine.Action{BetType: model.BetBet, Amount: money.Min(s.Bet.Add(view.BigBlind.MulInt(2)), allIn)})
	case !s.ToCall.IsZero() && roll < 15:
		tries = append(tries, engine.Action{BetType: model.BetFold})
	case !s.ToCall.IsZero() && roll < 30:
		tries = append(tries, engine.Action{BetType: model.BetRaise, Amount: money.Min(s.Bet.Add(s.ToCall).MulInt(2), allIn)})
	}
	if s.ToCall.IsZero() {
		tries = append(tries, engine.Action{BetType: model.BetCheck})
	} else {
		tries = append(tries, engine.Action{BetType: model.BetCall}, engine.Action{BetType: model.BetFold})
	}
	var err error
	for _, a := range tries {
		a.UserID = s.UserID
		if err = eng.Bet(ctx, tableID, a); err == nil {
			return nil
		}
		if _, _, ok := engine.Code(err); !ok {
			return err
		}
	}
	return err
}

func printResult(view viewmodel.TableView) {
	pterm.Println(pterm.LightGreen("  board: " + strings.Join(view.CommunityCards, " ")))
	rows := [][]string{{"Place", "Player", "Won", "Hand"}}
	for _, w := range view.Winners {
		hand := "uncontested"
		if w.Combination != nil {
			hand = w.Combination.String()
		}
		rows = append(rows, []string{fmt.Sprint(w.Place), w.UserID, w.Sum.String(), hand})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	stacks := [][]string{{"Place", "Player", "Stack", "Status"}}
	for _, s := range view.Seats {
		stacks = append(stacks, []string{fmt.Sprint(s.Place), s.UserID, s.Stack.String(), s.Status})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(stacks).Render()
}

func printBalances(st *memstore.Store, bots int) {
	rows := [][]string{{"Account", "Balance"}}
	for i := 1; i <= bots; i++ {
		id := fmt.Sprintf("bot%d", i)
		rows = append(rows, []string{id, st.Balance(id).String()})
	}
	rows = append(rows, []string{model.HouseAccount, st.Balance(model.HouseAccount).String()})
	pterm.DefaultSection.Println("Balances")
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
