package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/crystaldolphin/awaybot/internal/away"
)

// MaxAwayDuration bounds a single away session.
const MaxAwayDuration = 366 * 24 * time.Hour

var (
	reDuration = regexp.MustCompile(`^(\d+)\s*([[:alpha:]]*)$`)
	reHandle   = regexp.MustCompile(`^@?\w+$`)
)

// Away starts a session: "<N>[h|m]".
func (p *Processor) Away(args string) (string, error) {
	usage := fmt.Sprintf("Usage: %s <time> (e.g. '%s 3h' for 3 hours, '%s 180m' for 180 minutes).",
		p.cmd(Away), p.cmd(Away), p.cmd(Away))
	m := reDuration.FindStringSubmatch(strings.TrimSpace(args))
	if m == nil {
		return "", away.Validationf("%s", usage)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return "", away.Validationf("Duration must be a positive whole number. %s", usage)
	}

	unit := strings.ToLower(m[2])
	var d time.Duration
	switch unit {
	case "", "m":
		unit = "m"
		d = time.Duration(n) * time.Minute
	case "h":
		d = time.Duration(n) * time.Hour
	default:
		return "", away.Validationf("Unknown time unit '%s'. Use h (hours) or m (minutes).", m[2])
	}
	if n > int(MaxAwayDuration/time.Minute) || d > MaxAwayDuration {
		return "", away.Validationf("Duration too long. The maximum is %d hours.", int(MaxAwayDuration.Hours()))
	}

	until := p.state.StartAway(d, p.clock.Now())
	return fmt.Sprintf("Away mode activated for %d %s (=%d minutes) until %s.",
		n, unit, int(d.Minutes()), until.Format("15:04:05")), nil
}

// Cancel ends the active session.
func (p *Processor) Cancel(string) (string, error) {
	if !p.state.Cancel() {
		return "Away mode is not active.", nil
	}
	return "Away mode canceled.", nil
}

// Status reports the remaining time, expiring the session if it is due.
func (p *Processor) Status(string) (string, error) {
	st := p.state.Status(p.clock.Now())
	switch {
	case st.Active:
		return fmt.Sprintf("Away mode is active. Time left: %d minutes.", int(st.Remaining/time.Minute)), nil
	case st.Expired:
		return "Away mode has expired and is now deactivated.", nil
	}
	return "Away mode is not active.", nil
}

// SetMessage sets a per-handle reply: "@handle <text>".
func (p *Processor) SetMessage(args string) (string, error) {
	usage := fmt.Sprintf("Usage: %s @username <message> (e.g. '%s @john Back soon!').", p.cmd(SetMessage), p.cmd(SetMessage))
	i := strings.IndexFunc(args, unicode.IsSpace)
	if i < 0 {
		return "", away.Validationf("%s", usage)
	}
	handle, text := args[:i], strings.TrimLeftFunc(args[i:], unicode.IsSpace)
	if !reHandle.MatchString(handle) || text == "" {
		return "", away.Validationf("%s", usage)
	}
	handle = away.NormalizeHandle(handle)
	p.state.SetCustomMessage(handle, text)
	return fmt.Sprintf("Custom message set for %s: '%s'", handle, text), nil
}

// SetAwayMessage replaces the default reply.
func (p *Processor) SetAwayMessage(args string) (string, error) {
	if strings.TrimSpace(args) == "" {
		return "", away.Validationf("Usage: %s <message> (e.g. '%s Out for lunch!').", p.cmd(SetAwayMessage), p.cmd(SetAwayMessage))
	}
	if err := p.state.SetDefaultMessage(args); err != nil {
		return "", err
	}
	return fmt.Sprintf("Default away message updated to: '%s'", args), nil
}

// Except adds "@handle" or "+phone" to the exception list.
func (p *Processor) Except(args string) (string, error) {
	id, ok := away.ParseIdentifier(args)
	if !ok {
		return "", away.Validationf("Usage: %s <@username, +phonenumber or user ID> (e.g. '%s @john').", p.cmd(Except), p.cmd(Except))
	}
	p.state.AddException(id)
	return fmt.Sprintf("%s will no longer receive away messages.", id), nil
}

// RemoveExcept removes an identifier from the exception list.
func (p *Processor) RemoveExcept(args string) (string, error) {
	id, ok := away.ParseIdentifier(args)
	if !ok {
		return "", away.Validationf("Usage: %s <@username, +phonenumber or user ID> (e.g. '%s @john').", p.cmd(RemoveExcept), p.cmd(RemoveExcept))
	}
	if !p.state.RemoveException(id) {
		return fmt.Sprintf("%s is not in the exception list.", id), nil
	}
	return fmt.Sprintf("%s removed from exception list. They will now receive away messages.", id), nil
}

// ToggleGroupReplies flips replies in group chats.
func (p *Processor) ToggleGroupReplies(string) (string, error) {
	return fmt.Sprintf("Group replies are now %s.", enabled(p.state.ToggleGroupReplies())), nil
}

// EnableAI flips AI integration.
func (p *Processor) EnableAI(string) (string, error) {
	on := p.state.ToggleAI()
	return fmt.Sprintf("AI integration is now %s. Use '%s', '%s', or '%s' with optional language and context.",
		enabled(on), p.cmd(AIExplain), p.cmd(AIExplainOnly), p.cmd(AIExplainImage)), nil
}

// SetAILength sets the AI response length.
func (p *Processor) SetAILength(args string) (string, error) {
	l, ok := away.ParseLength(args)
	if !ok {
		names := make([]string, len(away.Lengths))
		for i, v := range away.Lengths {
			names[i] = string(v)
		}
		return "", away.Validationf("Invalid length '%s'. Allowed values: %s.", strings.TrimSpace(args), strings.Join(names, ", "))
	}
	p.state.SetAILength(l)
	return fmt.Sprintf("AI response length set to %s.", l), nil
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
