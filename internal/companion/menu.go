package companion

// Command is a context menu entry.
type Command int

const (
	CmdNone Command = iota
	CmdChat
	CmdPoke
	CmdAskMood
	CmdToggleSounds
	CmdQuit
)

// MenuItems returns the context menu labels in display order. The sound
// entry shows the current state.
func MenuItems(soundsOn bool) []string {
	sounds := "Toggle Sounds (Off)"
	if soundsOn {
		sounds = "Toggle Sounds (On)"
	}
	return []string{"Chat with Ruby", "Poke Ruby", "Ask Ruby's Mood", sounds, "Quit Ruby"}
}

// CommandFor maps a label picked from MenuItems back to its command.
func CommandFor(label string) Command {
	switch label {
	case "Chat with Ruby":
		return CmdChat
	case "Poke Ruby":
		return CmdPoke
	case "Ask Ruby's Mood":
		return CmdAskMood
	case "Toggle Sounds (On)", "Toggle Sounds (Off)":
		return CmdToggleSounds
	case "Quit Ruby":
		return CmdQuit
	}
	return CmdNone
}
