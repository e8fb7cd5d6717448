package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// SystemSender is the author of every locally generated chat line
	SystemSender = "System"

	customRoomName    = "Custom"
	customRoomDefault = "X0"
	maxRoomCodeLength = 16
)

// DefaultRoom is used when nothing else was chosen
var DefaultRoom = Room{Code: "A1", Name: "Skeld"}

// Room identifies the joined session
type Room struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Label formats the room for headers, e.g. "Skeld (#A1)"
func (r Room) Label() string {
	if r.Name == "" {
		return "#" + r.Code
	}
	return fmt.Sprintf("%s (#%s)", r.Name, r.Code)
}

// ParseRoomChoice parses a directory choice of the form "CODE|Name"
func ParseRoomChoice(choice string) (Room, error) {
	code, name, ok := strings.Cut(choice, "|")
	code = strings.TrimSpace(code)
	if !ok || code == "" {
		return Room{}, fmt.Errorf("%w: %q", ErrInvalidRoomChoice, choice)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = code
	}
	return Room{Code: code, Name: name}, nil
}

// CustomRoom builds a room from a user-typed code
func CustomRoom(code string) Room {
	code = strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(code))
	if utf8.RuneCountInString(code) > maxRoomCodeLength {
		code = string([]rune(code)[:maxRoomCodeLength])
	}
	if code == "" {
		code = customRoomDefault
	}
	return Room{Code: code, Name: customRoomName}
}

// ChatMessage is one line of the append-only chat log
type ChatMessage struct {
	From string `yaml:"from"`
	Text string `yaml:"text"`
	Self bool   `yaml:"self"`
}

// SystemMessage builds a locally generated notice
func SystemMessage(text string) ChatMessage {
	return ChatMessage{From: SystemSender, Text: text}
}
