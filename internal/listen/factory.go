package listen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// UnsupportedRecognizer is the backend used when speech input is disabled;
// Supported reports false and Listen always fails.
type UnsupportedRecognizer struct{}

func (UnsupportedRecognizer) Supported() bool { return false }
func (UnsupportedRecognizer) Close() error    { return nil }

func (UnsupportedRecognizer) Listen(_ context.Context) (<-chan Event, error) {
	return nil, ErrUnsupported
}

// NewRecognizer builds the recognizer named by mode: "exec" shells out to the
// configured command, "mock" runs in process, "off" disables speech input,
// and "auto" picks exec when a command is configured.
func NewRecognizer(mode, command string, log zerolog.Logger) (Recognizer, error) {
	switch mode {
	case "auto":
		if command != "" {
			return NewExecRecognizer(command, log)
		}
		return NewMockRecognizer(true), nil
	case "exec":
		if command == "" {
			return nil, fmt.Errorf("listen mode exec requires a recognizer command")
		}
		return NewExecRecognizer(command, log)
	case "mock":
		return NewMockRecognizer(true), nil
	case "off":
		return UnsupportedRecognizer{}, nil
	default:
		return nil, fmt.Errorf("unknown listen mode %q", mode)
	}
}
