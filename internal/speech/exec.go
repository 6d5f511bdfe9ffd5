package speech

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
	"github.com/rs/zerolog"
)

// ExecSynthesizer shells out to an external speech engine. Each utterance
// spawns one process: the request goes to stdin as a single JSON document and
// the process streams NDJSON events back on stdout until it exits.
type ExecSynthesizer struct {
	cmd    []string
	log    zerolog.Logger
	voices chan []Voice

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

type execSpeakRequest struct {
	Op    string  `json:"op"`
	Text  string  `json:"text,omitempty"`
	Voice string  `json:"voice,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

type execEvent struct {
	Type   string `json:"type"`
	Index  int    `json:"index,omitempty"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type execVoicesResponse struct {
	Voices []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Locale string `json:"locale"`
		Gender string `json:"gender"`
	} `json:"voices"`
}

func NewExecSynthesizer(command string, log zerolog.Logger) (*ExecSynthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse speech command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("speech command empty")
	}
	e := &ExecSynthesizer{
		cmd:    args,
		log:    log.With().Str("component", "speech_exec").Logger(),
		voices: make(chan []Voice, 4),
	}
	go e.loadVoices()
	return e, nil
}

func (e *ExecSynthesizer) Speak(ctx context.Context, u Utterance) (<-chan Event, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, fmt.Errorf("exec synthesizer closed")
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	payload, err := json.Marshal(execSpeakRequest{
		Op:    "speak",
		Text:  u.Text,
		Voice: u.VoiceID,
		Rate:  u.Rate,
		Pitch: u.Pitch,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start speech process: %w", err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer cancel()

		if _, err := stdin.Write(payload); err != nil {
			e.log.Warn().Err(err).Msg("write speech request")
			cmd.Wait()
			return
		}
		stdin.Close()

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var raw execEvent
			if err := json.Unmarshal(line, &raw); err != nil {
				events <- Event{Type: EventError, Code: "bad_event", Detail: err.Error()}
				continue
			}
			switch raw.Type {
			case "word":
				events <- Event{Type: EventWord, WordIndex: raw.Index}
			case "error":
				events <- Event{Type: EventError, Code: raw.Code, Detail: raw.Detail}
			case "done":
				events <- Event{Type: EventDone}
				cmd.Wait()
				return
			}
		}
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			e.log.Warn().Err(err).Msg("speech process exited with error")
		}
	}()
	return events, nil
}

func (e *ExecSynthesizer) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *ExecSynthesizer) VoiceUpdates() <-chan []Voice {
	return e.voices
}

func (e *ExecSynthesizer) Close() error {
	e.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	close(e.voices)
	return nil
}

// loadVoices asks the process for its voice catalog once at startup. A
// failure leaves the engine usable with default voice selection.
func (e *ExecSynthesizer) loadVoices() {
	payload, _ := json.Marshal(execSpeakRequest{Op: "voices"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		e.log.Warn().Err(err).Msg("voice catalog load failed")
		return
	}
	out, err := func() ([]byte, error) {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		if _, err := stdin.Write(payload); err != nil {
			cmd.Wait()
			return nil, err
		}
		stdin.Close()
		scanner := bufio.NewScanner(stdout)
		var line []byte
		for scanner.Scan() {
			if len(scanner.Bytes()) > 0 {
				line = append([]byte{}, scanner.Bytes()...)
				break
			}
		}
		cmd.Wait()
		if line == nil {
			return nil, fmt.Errorf("no voice catalog output")
		}
		return line, nil
	}()
	if err != nil {
		e.log.Warn().Err(err).Msg("voice catalog load failed")
		return
	}

	var resp execVoicesResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		e.log.Warn().Err(err).Msg("voice catalog parse failed")
		return
	}
	voices := make([]Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, Voice{
			ID:     v.ID,
			Name:   v.Name,
			Locale: v.Locale,
			Gender: Gender(v.Gender),
		})
	}
	e.publishVoices(voices)
}

// publishVoices delivers a loaded catalog. The closed check and the send
// share the mutex with Close; a shutdown racing a slow catalog load must not
// close the channel between them. The send never blocks, so holding the lock
// here cannot stall Close.
func (e *ExecSynthesizer) publishVoices(voices []Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || len(voices) == 0 {
		return
	}
	select {
	case e.voices <- voices:
	default:
	}
}
