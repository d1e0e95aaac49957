package away

import (
	"fmt"
	"time"
)

// ActionKind enumerates policy outcomes.
type ActionKind int

const (
	// Ignore means no automatic reply.
	Ignore ActionKind = iota
	// Reply means Text goes back to the originating chat.
	Reply
	// AutoExcept means Sender was just added to the exception list and Text
	// goes to the owner instead of the originating chat.
	AutoExcept
)

func (k ActionKind) String() string {
	switch k {
	case Reply:
		return "reply"
	case AutoExcept:
		return "auto-except"
	}
	return "ignore"
}

// Inbound is the part of an inbound message the policy looks at.
type Inbound struct {
	Sender Sender
	Group  bool
}

// Action is the policy decision for one inbound message.
type Action struct {
	Kind   ActionKind
	Text   string
	Sender string // identifier the decision applied to
	Count  int    // per-session count after this message
}

// Decide evaluates one inbound message against the session, mutating
// counters, exceptions and expiry as needed. The whole evaluation runs under
// the state lock.
func (s *State) Decide(in Inbound, now time.Time) Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAway {
		return Action{Kind: Ignore}
	}
	if s.expireLocked(now) {
		return Action{Kind: Ignore}
	}
	if in.Group && !s.groupReplies {
		return Action{Kind: Ignore}
	}
	if !in.Sender.IsUser {
		return Action{Kind: Ignore}
	}

	id := in.Sender.Identifier()
	if id == "" {
		return Action{Kind: Ignore}
	}
	if _, ok := s.exceptSenders[id]; ok {
		return Action{Kind: Ignore, Sender: id}
	}

	s.messageCounts[id]++
	n := s.messageCounts[id]
	if n >= AutoExceptThreshold {
		s.exceptSenders[id] = struct{}{}
		return Action{
			Kind:   AutoExcept,
			Text:   fmt.Sprintf("%s has sent %d messages and has been added to the exception list.", id, n),
			Sender: id,
			Count:  n,
		}
	}

	text := s.defaultMessage
	if h := in.Sender.Handle(); h != "" {
		if custom, ok := s.customMessages[h]; ok {
			text = custom
		}
	}
	return Action{Kind: Reply, Text: text, Sender: id, Count: n}
}
