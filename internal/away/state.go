// Package away holds the auto-responder session state and the policy that
// decides, for every inbound message, whether an away reply is due.
//
// All state lives in memory for the lifetime of the process. Every exported
// method on State takes the state lock for one complete decision cycle, so
// concurrent transports never observe a half-applied transition.
package away

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultAwayMessage is the reply used until the owner sets another one.
const DefaultAwayMessage = "I'm currently away! I'll get back to you soon."

// AutoExceptThreshold is the per-session message count at which a sender is
// moved to the exception list.
const AutoExceptThreshold = 3

// Length is the requested size of AI responses.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Lengths lists every accepted Length in display order.
var Lengths = []Length{LengthShort, LengthMedium, LengthLong}

// ParseLength parses s case-insensitively.
func ParseLength(s string) (Length, bool) {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Lengths {
		if l == v {
			return v, true
		}
	}
	return "", false
}

// Language is the language AI responses are written in.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageArabic  Language = "arabic"
)

// Languages lists every supported Language, sorted.
var Languages = []Language{LanguageArabic, LanguageEnglish}

// ParseLanguage parses s case-insensitively.
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Languages {
		if l == v {
			return v, true
		}
	}
	return "", false
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Options seed a new State.
type Options struct {
	DefaultMessage string
	GroupReplies   bool
	AIEnabled      bool
	AILength       Length
	AILanguage     Language
}

// State is the single process-wide away session.
type State struct {
	mu sync.Mutex

	isAway    bool
	awayUntil time.Time // zero iff !isAway

	defaultMessage string
	customMessages map[string]string   // normalized handle → text
	exceptSenders  map[string]struct{} // sender identifiers
	messageCounts  map[string]int      // sender identifier → count this session

	groupReplies bool
	aiEnabled    bool
	aiLength     Length
	aiLanguage   Language
}

// NewState creates a State with defaults filled in for empty options.
func NewState(opts Options) *State {
	s := &State{
		defaultMessage: strings.TrimSpace(opts.DefaultMessage),
		customMessages: make(map[string]string),
		exceptSenders:  make(map[string]struct{}),
		messageCounts:  make(map[string]int),
		groupReplies:   opts.GroupReplies,
		aiEnabled:      opts.AIEnabled,
		aiLength:       opts.AILength,
		aiLanguage:     opts.AILanguage,
	}
	if s.defaultMessage == "" {
		s.defaultMessage = DefaultAwayMessage
	}
	if _, ok := ParseLength(string(s.aiLength)); !ok {
		s.aiLength = LengthMedium
	}
	if _, ok := ParseLanguage(string(s.aiLanguage)); !ok {
		s.aiLanguage = LanguageEnglish
	}
	return s
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	IsAway         bool
	AwayUntil      time.Time
	DefaultMessage string
	CustomMessages map[string]string
	Exceptions     []string
	MessageCounts  map[string]int
	GroupReplies   bool
	AIEnabled      bool
	AILength       Length
	AILanguage     Language
}

// Snapshot copies the current state. It does not evaluate expiry.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom := make(map[string]string, len(s.customMessages))
	for k, v := range s.customMessages {
		custom[k] = v
	}
	counts := make(map[string]int, len(s.messageCounts))
	for k, v := range s.messageCounts {
		counts[k] = v
	}
	except := make([]string, 0, len(s.exceptSenders))
	for k := range s.exceptSenders {
		except = append(except, k)
	}
	sort.Strings(except)

	return Snapshot{
		IsAway:         s.isAway,
		AwayUntil:      s.awayUntil,
		DefaultMessage: s.defaultMessage,
		CustomMessages: custom,
		Exceptions:     except,
		MessageCounts:  counts,
		GroupReplies:   s.groupReplies,
		AIEnabled:      s.aiEnabled,
		AILength:       s.aiLength,
		AILanguage:     s.aiLanguage,
	}
}

// AISettings are the values an AI request reads from State.
type AISettings struct {
	Enabled  bool
	Length   Length
	Language Language
}

// AISettings reads the AI options under the lock.
func (s *State) AISettings() AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AISettings{Enabled: s.aiEnabled, Length: s.aiLength, Language: s.aiLanguage}
}

// StartAway begins a new session of length d, replacing any active one, and
// returns the deadline.
func (s *State) StartAway(d time.Duration, now time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isAway = true
	s.awayUntil = now.Add(d)
	clear(s.messageCounts)
	return s.awayUntil
}

// Cancel ends the active session. It reports false when none was active.
func (s *State) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAway {
		return false
	}
	s.endLocked()
	return true
}

// Status describes the session as seen by a status query.
type Status struct {
	Active    bool
	Expired   bool // the query itself ended the session
	Remaining time.Duration
	Until     time.Time
}

// Status evaluates expiry the same way inbound messages do and reports the
// result.
func (s *State) Status(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isAway {
		return Status{}
	}
	if s.expireLocked(now) {
		return Status{Expired: true}
	}
	return Status{Active: true, Remaining: s.awayUntil.Sub(now), Until: s.awayUntil}
}

// Expire ends the session if its deadline has passed, reporting whether it
// did. Inbound messages that skip Decide call it so expiry is still
// evaluated on every message.
func (s *State) Expire(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expireLocked(now)
}

// SetCustomMessage overrides the reply for one handle.
func (s *State) SetCustomMessage(handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customMessages[NormalizeHandle(handle)] = text
}

// SetDefaultMessage replaces the fallback reply. Empty text is rejected and
// leaves the state unchanged.
func (s *State) SetDefaultMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Msg: "The away message cannot be empty."}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultMessage = text
	return nil
}

// AddException adds id to the exception list. It reports whether id was new.
func (s *State) AddException(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exceptSenders[id]; ok {
		return false
	}
	s.exceptSenders[id] = struct{}{}
	return true
}

// RemoveException removes id. It reports false when id was not listed.
func (s *State) RemoveException(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exceptSenders[id]; !ok {
		return false
	}
	delete(s.exceptSenders, id)
	return true
}

// ToggleGroupReplies flips group replies and returns the new value.
func (s *State) ToggleGroupReplies() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupReplies = !s.groupReplies
	return s.groupReplies
}

// ToggleAI flips AI integration and returns the new value.
func (s *State) ToggleAI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiEnabled = !s.aiEnabled
	return s.aiEnabled
}

// SetAILength sets the AI response length.
func (s *State) SetAILength(l Length) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiLength = l
}

// expireLocked ends the session when now has reached the deadline.
func (s *State) expireLocked(now time.Time) bool {
	if !s.isAway || now.Before(s.awayUntil) {
		return false
	}
	s.endLocked()
	return true
}

func (s *State) endLocked() {
	s.isAway = false
	s.awayUntil = time.Time{}
	clear(s.messageCounts)
}
