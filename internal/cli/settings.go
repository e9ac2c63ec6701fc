package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cruciblehq/podsmith/internal/settings"
)

var ErrSettingsExist = errors.New("settings file already exists")

// Represents the 'podsmith settings' command group.
type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" default:"1" help:"Print the effective settings."`
	Init SettingsInitCmd `cmd:"" help:"Write the default settings file."`
}

// Represents the 'podsmith settings show' command.
type SettingsShowCmd struct{}

// Executes the settings show command.
func (c *SettingsShowCmd) Run(env *Env) error {
	s, err := env.Settings()
	if err != nil {
		return err
	}

	data, err := s.Marshal()
	if err != nil {
		return err
	}

	_, err = env.Stdout.Write(data)
	return err
}

// Represents the 'podsmith settings init' command.
type SettingsInitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing file."`
}

// Executes the settings init command.
func (c *SettingsInitCmd) Run(env *Env) error {
	path := env.ConfigPath()

	if !c.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrSettingsExist, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := settings.Defaults().Save(path); err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, successMsg("Wrote %s", path))
	return nil
}
