package cli

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrNoInput = errors.New("no input")

// Represents the 'podsmith encrypt' command.
type EncryptCmd struct {
	Text string `arg:"" optional:"" help:"Text to encrypt. Read from standard input when omitted."`
}

// Executes the encrypt command, printing the token as base64.
func (c *EncryptCmd) Run(env *Env) error {
	text, err := argOrStdin(c.Text, env.Stdin)
	if err != nil {
		return err
	}

	cipher, err := env.Cipher()
	if err != nil {
		return err
	}

	token, err := cipher.Encrypt(text)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, base64.StdEncoding.EncodeToString(token))
	return nil
}

// Represents the 'podsmith decrypt' command.
type DecryptCmd struct {
	Token string `arg:"" optional:"" help:"Base64 token from encrypt. Read from standard input when omitted."`
}

// Executes the decrypt command.
func (c *DecryptCmd) Run(env *Env) error {
	encoded, err := argOrStdin(c.Token, env.Stdin)
	if err != nil {
		return err
	}

	token, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return fmt.Errorf("token is not valid base64: %w", err)
	}

	cipher, err := env.Cipher()
	if err != nil {
		return err
	}

	text, err := cipher.Decrypt(token)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, text)
	return nil
}

// Returns arg, or the first line of r when arg is empty.
func argOrStdin(arg string, r io.Reader) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if r == nil {
		return "", ErrNoInput
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", ErrNoInput
	}
	return line, nil
}
