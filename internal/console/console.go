// Package console turns typed input lines into client commands.
package console

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned for an unrecognised slash command
var ErrUnknownCommand = errors.New("unknown command")

// Kind selects what a Command does
type Kind int

const (
	Chat Kind = iota
	Vote
	Kill
	Act
	Who
	Quit
	Help
	Empty
)

// Command is one parsed input line
type Command struct {
	Kind Kind
	// Arg is the chat text or the target reference
	Arg string
}

// Usage lists the supported commands
const Usage = `Commands:
  <text>        send a chat message
  /vote <id>    vote against a player
  /kill <id>    kill a player (killers only)
  /act <id>     perform your role action
  /who          show the roster and targets
  /help         show this help
  /quit         leave the room`

var targeted = map[string]Kind{
	"vote": Vote,
	"kill": Kill,
	"act":  Act,
}

// Parse reads one line. Lines not starting with "/" are chat; "//" escapes
// a chat line that starts with a slash.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: Empty}, nil
	}
	if strings.HasPrefix(line, "//") {
		return Command{Kind: Chat, Arg: line[1:]}, nil
	}
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: Chat, Arg: line}, nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	if kind, ok := targeted[name]; ok {
		if arg == "" {
			return Command{}, fmt.Errorf("/%s needs a target", name)
		}
		return Command{Kind: kind, Arg: arg}, nil
	}

	switch name {
	case "who":
		return Command{Kind: Who}, nil
	case "quit", "exit":
		return Command{Kind: Quit}, nil
	case "help", "?":
		return Command{Kind: Help}, nil
	}
	return Command{}, fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
}
