package commands

import (
	"strings"
	"text/template"

	"github.com/crystaldolphin/awaybot/internal/away"
)

var helpTmpl = template.Must(template.New("help").Parse(
	`Welcome to your Away Bot! It auto-replies to messages sent to your account while you're away (group replies {{.Group}}, AI {{.AI}}).

Here's how to use it:
- **{{.P}}away <time>** - Set away mode (e.g. ` + "`{{.P}}away 3h`" + ` for 3 hours, ` + "`{{.P}}away 180m`" + ` for 180 minutes).
- **{{.P}}cancel** - Stop away mode.
- **{{.P}}status** - Check away mode status.
- **{{.P}}setmessage @username <message>** - Set a custom reply (e.g. ` + "`{{.P}}setmessage @john Back soon!`" + `).
- **{{.P}}setawaymessage <message>** - Set the default away message (e.g. ` + "`{{.P}}setawaymessage Out for lunch!`" + `).
- **{{.P}}except <@username, +phonenumber or user ID>** - Exclude a user from away messages.
- **{{.P}}removeexcept <@username, +phonenumber or user ID>** - Remove a user from the exception list.
- **{{.P}}togglegroupreplies** - Toggle group replies (currently {{.Group}}).
- **{{.P}}enable-ai** - Toggle AI integration (currently {{.AI}}).
- **{{.P}}setailength <short|medium|long>** - Set AI response length (currently {{.Length}}).
- **{{.P}}ai-explain [arabic|english] [context]** - Analyze the replied message.
- **{{.P}}ai-explain-only <arabic|english> <context>** - Analyze text context only.
- **{{.P}}ai-explain-image [arabic|english] [context]** - Analyze a replied image.

Special feature: a sender who writes {{.Threshold}} or more messages during one away session is added to the exception list and you get a notification.

Notes: replies depend on toggles and exceptions.`))

// Help renders the usage summary with the current toggle states.
func (p *Processor) Help(string) (string, error) {
	snap := p.state.Snapshot()
	var b strings.Builder
	err := helpTmpl.Execute(&b, map[string]any{
		"P":         p.prefix,
		"Group":     enabled(snap.GroupReplies),
		"AI":        enabled(snap.AIEnabled),
		"Length":    snap.AILength,
		"Threshold": away.AutoExceptThreshold,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
