package listen

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/mattn/go-shellwords"
	"github.com/rs/zerolog"

	"github.com/guruji-labs/guruji/internal/reliability"
)

// ExecRecognizer shells out to an external microphone transcriber. The
// process owns the audio capture and streams NDJSON transcript events on
// stdout. One listening session runs the process until it reports a final
// transcript; a process that dies early is restarted with backoff.
type ExecRecognizer struct {
	cmd []string
	log zerolog.Logger
}

type execRecognizerEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Code string `json:"code,omitempty"`
}

const (
	restartBase = 200 * time.Millisecond
	restartCap  = 3 * time.Second
)

func NewExecRecognizer(command string, log zerolog.Logger) (*ExecRecognizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse recognizer command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("recognizer command empty")
	}
	return &ExecRecognizer{
		cmd: args,
		log: log.With().Str("component", "listen_exec").Logger(),
	}, nil
}

func (r *ExecRecognizer) Listen(ctx context.Context) (<-chan Event, error) {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		attempt := 0
		for ctx.Err() == nil {
			final, err := r.runOnce(ctx, events)
			if final || ctx.Err() != nil {
				return
			}
			if err != nil {
				r.log.Warn().Err(err).Int("attempt", attempt).Msg("recognizer process failed")
				events <- Event{Type: EventError, Code: "recognizer-failed"}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(reliability.ExponentialBackoff(attempt, restartBase, restartCap)):
			}
			attempt++
		}
	}()
	return events, nil
}

// runOnce runs the transcriber process to completion. It reports whether a
// final transcript was delivered.
func (r *ExecRecognizer) runOnce(ctx context.Context, events chan<- Event) (bool, error) {
	cmd := exec.CommandContext(ctx, r.cmd[0], r.cmd[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return false, err
	}
	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("start recognizer: %w", err)
	}

	final := false
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw execRecognizerEvent
		if err := json.Unmarshal(line, &raw); err != nil {
			r.log.Warn().Err(err).Msg("bad recognizer event")
			continue
		}
		switch raw.Type {
		case "interim":
			events <- Event{Type: EventInterim, Text: raw.Text}
		case "final":
			events <- Event{Type: EventFinal, Text: raw.Text}
			final = true
		case "error":
			events <- Event{Type: EventError, Code: raw.Code}
		}
	}
	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		return final, err
	}
	return final, nil
}

func (r *ExecRecognizer) Supported() bool {
	return true
}

func (r *ExecRecognizer) Close() error {
	return nil
}
