package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"poker-platform/internal/events"
	"poker-platform/internal/game"
	"poker-platform/internal/game/viewmodel"
	"poker-platform/internal/model"
)

type Options struct {
	// AfkTurnTime is the turn time of a seat marked as away.
	AfkTurnTime int
	// RoundExpiration is the pause between two hands.
	RoundExpiration int
	// ReformThreshold queues tournament tables with fewer seats.
	ReformThreshold int
	// AfkMarkAfter consecutive auto actions mark a seat as away;
	// AfkDropAfter drop it at the end of the hand.
	AfkMarkAfter int
	AfkDropAfter int

	Now  func() time.Time
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.AfkTurnTime <= 0 {
		o.AfkTurnTime = model.AfkTurnTime
	}
	if o.RoundExpiration <= 0 {
		o.RoundExpiration = model.RoundExpiration
	}
	if o.ReformThreshold <= 0 {
		o.ReformThreshold = 5
	}
	if o.AfkMarkAfter <= 0 {
		o.AfkMarkAfter = 2
	}
	if o.AfkDropAfter <= 0 {
		o.AfkDropAfter = 4
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

// Engine advances hands. Every operation runs under the table lock inside
// one repository transaction; events are published only after commit.
type Engine struct {
	repo  Repository
	locks Locker
	pub   events.Publisher
	opts  Options

	rndMu sync.Mutex
}

func New(repo Repository, locks Locker, pub events.Publisher, opts Options) *Engine {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Engine{repo: repo, locks: locks, pub: pub, opts: opts.withDefaults()}
}

func (e *Engine) now() int64 { return e.opts.Now().Unix() }

func (e *Engine) shuffledDeck() []game.Card {
	d := game.NewDeck()
	e.rndMu.Lock()
	d.Shuffle(e.opts.Rand)
	e.rndMu.Unlock()
	return d.Cards()
}

type pendingEvent struct {
	name string
	data any
}

// tx is the state of one table transaction.
type tx struct {
	e      *Engine
	ctx    context.Context
	agg    *model.TableAggregate
	now    int64
	log    zerolog.Logger
	events []pendingEvent

	// blocked is returned to the caller after a commit, for transitions
	// whose mutations stand even though the state did not move.
	blocked error
	dirty   bool
}

func (t *tx) emit(name string, data any) {
	t.events = append(t.events, pendingEvent{name: name, data: data})
	t.dirty = true
}

func (e *Engine) withTable(ctx context.Context, tableID string, fn func(*tx) error, users ...string) (*tx, error) {
	unlock, err := e.locks.Lock(ctx, tableKey(tableID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var t *tx
	err = e.repo.InTableTx(ctx, tableID, func(agg *model.TableAggregate) error {
		t = &tx{
			e:   e,
			ctx: ctx,
			agg: agg,
			now: e.now(),
			log: log.With().Str("table_id", tableID).Str("session", agg.Table.Session).Logger(),
		}
		return fn(t)
	}, users...)
	if errors.Is(err, model.ErrNotFound) {
		return nil, coded(ErrTableNotFound)
	}
	if err != nil {
		return t, err
	}
	e.flush(t)
	return t, nil
}

func (e *Engine) flush(t *tx) {
	if !t.dirty {
		return
	}
	tableID := t.agg.Table.ID
	session := t.agg.Table.Session
	for _, ev := range t.events {
		e.pub.Publish(tableID, ev.name, session, ev.data)
	}
	e.pub.Publish(tableID, events.StateChanged, session, viewmodel.BuildTableState(t.agg, ""))
	metricSnapshotsPublished.Add(1)
	if t.agg.Table.Archived {
		if d, ok := e.pub.(interface{ Drop(string) }); ok {
			d.Drop(tableID)
		}
	}
}

// State returns the current view of a table for viewerID.
func (e *Engine) State(ctx context.Context, tableID, viewerID string) (viewmodel.TableView, error) {
	agg, err := e.repo.LoadTable(ctx, tableID)
	if errors.Is(err, model.ErrNotFound) {
		return viewmodel.TableView{}, coded(ErrTableNotFound)
	}
	if err != nil {
		return viewmodel.TableView{}, err
	}
	return viewmodel.BuildTableState(agg, viewerID), nil
}
