package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestGameErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrNameRequired has correct message",
			err:      ErrNameRequired,
			expected: "a display name is required",
		},
		{
			name:     "ErrRoomRequired has correct message",
			err:      ErrRoomRequired,
			expected: "a room code is required",
		},
		{
			name:     "ErrInvalidRoomChoice has correct message",
			err:      ErrInvalidRoomChoice,
			expected: "room choice must look like CODE|Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error message = %v, want %v", tt.err.Error(), tt.expected)
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	errorList := []error{
		ErrNameRequired,
		ErrRoomRequired,
		ErrInvalidRoomChoice,
	}

	for i := 0; i < len(errorList); i++ {
		for j := i + 1; j < len(errorList); j++ {
			if errors.Is(errorList[i], errorList[j]) {
				t.Errorf("Error %v should not be equal to %v", errorList[i], errorList[j])
			}
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("join room: %w", ErrRoomRequired)
	if !errors.Is(wrapped, ErrRoomRequired) {
		t.Errorf("wrapped error should match ErrRoomRequired")
	}
}
