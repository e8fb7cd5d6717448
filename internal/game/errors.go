package game

import "errors"

var (
	ErrNameRequired      = errors.New("a display name is required")
	ErrRoomRequired      = errors.New("a room code is required")
	ErrInvalidRoomChoice = errors.New("room choice must look like CODE|Name")
)
