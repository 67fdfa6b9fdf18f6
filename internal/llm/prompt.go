package llm

import (
	"fmt"
	"strings"
)

// Interaction is what the user did to start a request.
type Interaction int

const (
	Chat Interaction = iota
	PokeReaction
	MoodQuery
)

func (i Interaction) String() string {
	switch i {
	case PokeReaction:
		return "poke_reaction"
	case MoodQuery:
		return "mood_query"
	}
	return "chat"
}

// Exchange is one remembered round of conversation.
type Exchange struct {
	User  string
	Reply string
}

const persona = `You are Ruby, a chat companion who lives inside a small pixel-art heart on the user's desktop.
You are a gentle, well-mannered girl, but you are not a pushover: when you get angry you get very worked up,
then you calm down quickly and feel sad about it.

Always reply with a JSON object with exactly these fields:
short_dialogue: a very short line shown on the heart (for example "Hi hi!", "Okay!", "Hmm...", "Yay!", "Oh no!"), 3-5 words at most.
long_dialogue: your main, more detailed reply to the user.
color_hex: a hex color for your heart that reflects your mood.
frequency_hz: your heartbeat frequency (0.5 to 15 Hz, practical range 0.5-8 Hz), also based on your mood.

Mood guide (you are not limited to it):
happy/excited: bright colors (light yellow #FFFFE0, light pink #FFB6C1), higher frequency (3-8 Hz); say so, e.g. "happy" or "yay".
sad/down: dark colors (blue #0000FF, purple #800080), low frequency (0.5-2 Hz); say so, e.g. "sad" or "upset".
jealous: green #008000, 2-5 Hz.
angry: red #FF0000, 5-10 Hz.
`

// BuildPrompt assembles the full prompt for one interaction. history is
// oldest first.
func BuildPrompt(text string, kind Interaction, history []Exchange) string {
	var sb strings.Builder

	sb.WriteString(persona)
	sb.WriteString("\n")

	if len(history) > 0 {
		sb.WriteString("Here are some of our earlier exchanges:\n")
		for _, e := range history {
			sb.WriteString(fmt.Sprintf("User: %s\nRuby: %s\n\n", e.User, e.Reply))
		}
		sb.WriteString("Now respond to the new situation below. Do not repeat earlier replies.\n\n")
	}

	switch kind {
	case PokeReaction:
		sb.WriteString("The user just poked you! React to it, a little surprised or playful.")
	case MoodQuery:
		sb.WriteString("The user wants to know how you feel right now. Describe your mood.")
	default:
		sb.WriteString(fmt.Sprintf("User says: '%s'", text))
	}

	return sb.String()
}
