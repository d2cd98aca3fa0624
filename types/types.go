package types

import (
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

//ConfigFileName is looked up in the cleaned directory when no config path is given.
const ConfigFileName = "sipclean.yaml"

const (
	DefaultBuildFile    = "Makefile"
	DefaultCleanCommand = "make clean"
)

//DefaultKeep lists the sources of a SIP wrapper directory.
var DefaultKeep = []string{
	"processlib.sip",
	"processlibconfig.py.in",
	"configure.py",
	"clean.py",
	".gitignore",
}

var ErrEmptyCommand = errors.New("clean command is empty")

type CleanConfig struct {
	BuildFile    string   `yaml:"build_file"`
	CleanCommand string   `yaml:"clean_command"`
	Keep         []string `yaml:"keep"`
}

//DefaultConfig returns a new config holding the built-in allow-list.
func DefaultConfig() *CleanConfig {
	return &CleanConfig{
		BuildFile:    DefaultBuildFile,
		CleanCommand: DefaultCleanCommand,
		Keep:         append([]string(nil), DefaultKeep...),
	}
}

//ApplyDefaults fills empty fields with the built-in values.
//A nil Keep gets the default allow-list, an empty non-nil Keep stays empty.
func (c *CleanConfig) ApplyDefaults() {
	if c.BuildFile == "" {
		c.BuildFile = DefaultBuildFile
	}
	if strings.TrimSpace(c.CleanCommand) == "" {
		c.CleanCommand = DefaultCleanCommand
	}
	if c.Keep == nil {
		c.Keep = append([]string(nil), DefaultKeep...)
	}
}

//AddKeep appends name to the allow-list unless it is already there.
func (c *CleanConfig) AddKeep(name string) {
	if c.Keeps(name) {
		return
	}
	c.Keep = append(c.Keep, name)
}

func (c *CleanConfig) Keeps(name string) bool {
	for _, keep := range c.Keep {
		if keep == name {
			return true
		}
	}
	return false
}

//KeepSet returns the allow-list as a lookup table.
func (c *CleanConfig) KeepSet() map[string]bool {
	set := make(map[string]bool, len(c.Keep))
	for _, name := range c.Keep {
		set[name] = true
	}
	return set
}

//CleanArgs splits CleanCommand into a program and its arguments.
func (c *CleanConfig) CleanArgs() ([]string, error) {
	args, err := shellwords.Parse(c.CleanCommand)
	if err != nil {
		return nil, errors.Wrapf(err, "parse clean command %q", c.CleanCommand)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return args, nil
}

//Validate checks that every name refers to an entry of the cleaned directory itself.
func (c *CleanConfig) Validate() error {
	if err := checkName("build_file", c.BuildFile); err != nil {
		return err
	}
	for _, name := range c.Keep {
		if err := checkName("keep", name); err != nil {
			return err
		}
	}
	_, err := c.CleanArgs()
	return err
}

func checkName(field, name string) error {
	switch {
	case name == "":
		return errors.Errorf("%s: empty file name", field)
	case name == "." || name == "..":
		return errors.Errorf("%s: %q is not a file name", field, name)
	case strings.ContainsAny(name, `/\`):
		return errors.Errorf("%s: %q must not contain a path separator", field, name)
	}
	return nil
}
