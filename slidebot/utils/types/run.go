// slidebot/utils/types/run.go
package types

import "time"

type RunState string

const (
	StateIdle       RunState = "idle"
	StateScraping   RunState = "scraping"
	StateExpanding  RunState = "expanding"
	StateFetching   RunState = "fetching"
	StateAssembling RunState = "assembling"
	StatePublishing RunState = "publishing"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// Terminal reports whether no further transition follows.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// RunEvent is published on every pipeline state transition.
type RunEvent struct {
	RunID  string    `json:"run_id"`
	Link   Link      `json:"link"`
	State  RunState  `json:"state"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// RunOutcome is the final result of one pipeline run.
type RunOutcome struct {
	RunID      string   `json:"run_id"`
	ChannelID  string   `json:"channel_id"`
	Link       Link     `json:"link"`
	State      RunState `json:"state"`
	Reply      string   `json:"reply"`
	HostedLink string   `json:"hosted_link,omitempty"`
	Pages      int      `json:"pages"`
	Err        error    `json:"-"`
}
