package speech

import (
	"fmt"

	"github.com/rs/zerolog"
)

// NewSynthesizer builds the synthesizer named by mode: "exec" shells out to
// the configured command, "mock" runs fully in process, and "auto" picks exec
// when a command is configured.
func NewSynthesizer(mode, command string, log zerolog.Logger) (Synthesizer, error) {
	switch mode {
	case "auto":
		if command != "" {
			return NewExecSynthesizer(command, log)
		}
		return NewMockSynthesizer(true), nil
	case "exec":
		if command == "" {
			return nil, fmt.Errorf("speech mode exec requires a synth command")
		}
		return NewExecSynthesizer(command, log)
	case "mock":
		return NewMockSynthesizer(true), nil
	default:
		return nil, fmt.Errorf("unknown speech mode %q", mode)
	}
}
