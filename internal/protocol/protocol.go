package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrMissingCommand = errors.New("missing command")
)

// Names a request or response.
type Command string

const (
	CmdPull        Command = "pull"
	CmdProvision   Command = "provision"
	CmdSetupAccess Command = "setup-access"
	CmdSearch      Command = "search"
	CmdContainers  Command = "containers"
	CmdImages      Command = "images"
	CmdStatus      Command = "status"
	CmdShutdown    Command = "shutdown"

	// Response commands.
	CmdOK    Command = "ok"
	CmdError Command = "error"
)

// Outer frame of every message.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshals a command and its payload into an envelope. A nil payload is
// omitted. The result carries no trailing newline.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", cmd, err)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}

// Unmarshals one envelope, returning it along with its raw payload.
func Decode(data []byte) (*Envelope, json.RawMessage, error) {
	data = bytes.TrimSpace(data)

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Command == "" {
		return nil, nil, ErrMissingCommand
	}

	return &env, env.Payload, nil
}

// Unmarshals a payload into T. An empty payload yields the zero value.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	v := new(T)
	if len(payload) == 0 || string(payload) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, nil
}
