package events

// Event names.
const (
	PlayerAction = "player_action"
	StartGame    = "start_game"
	FinishGame   = "finish_game"
	StateChanged = "state_changed"
)

type Event struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	TableID  string `json:"table_id"`
	Session  string `json:"session"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

// Action is the payload of PlayerAction.
type Action struct {
	Round   string `json:"round"`
	Place   int    `json:"place"`
	UserID  string `json:"user_id"`
	BetType string `json:"bet_type"`
	Amount  string `json:"amount"`
	Auto    bool   `json:"auto"`
}

// Publisher receives committed events. Delivery is fire-and-forget.
type Publisher interface {
	Publish(tableID, event, session string, data any)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(string, string, string, any) {}
