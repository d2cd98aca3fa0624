package tasks

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/angrypie/sipclean/types"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

//Cleaner removes build artifacts from the top level of a directory.
type Cleaner struct {
	Fs     afero.Fs
	Runner Runner
	Logger *log.Logger
	Config *types.CleanConfig

	//DryRun reports removals without touching the directory or running the build tool.
	DryRun bool
	//KeepGoing tries every file instead of stopping at the first failed removal.
	KeepGoing bool
	//SkipPreClean never runs the clean command.
	SkipPreClean bool
}

//Result describes what a Clean call did.
type Result struct {
	PreCleaned bool
	Output     []byte
	Removed    []string
	Kept       []string
}

//NewCleaner returns a Cleaner working on the OS filesystem.
func NewCleaner(config *types.CleanConfig) *Cleaner {
	return &Cleaner{
		Fs:     afero.NewOsFs(),
		Runner: ExecRunner{},
		Logger: log.Default(),
		Config: config,
	}
}

//Clean runs the build tool's clean target when dir holds a readable
//build file, then removes every top level file of dir that is not in
//the allow-list. Subdirectories are never entered.
func (c *Cleaner) Clean(ctx context.Context, dir string) (*Result, error) {
	result := &Result{}

	if !c.SkipPreClean && !c.DryRun {
		ran, output, err := c.PreClean(ctx, dir)
		result.PreCleaned = ran
		result.Output = output
		if err != nil {
			return result, err
		}
	}

	names, err := c.Scan(dir)
	if err != nil {
		return result, err
	}

	return result, c.removeUnlisted(dir, names, result)
}

//PreClean runs the clean command if the build file is readable.
//A non-zero exit is logged and dropped, a command that cannot be
//started is returned.
func (c *Cleaner) PreClean(ctx context.Context, dir string) (ran bool, output []byte, err error) {
	buildFile := filepath.Join(dir, c.Config.BuildFile)
	if !isReadable(c.Fs, buildFile) {
		c.Logger.Debug("no readable build file, skipping clean command", "file", buildFile)
		return false, nil, nil
	}

	args, err := c.Config.CleanArgs()
	if err != nil {
		return false, nil, err
	}

	command := strings.Join(args, " ")
	c.Logger.Debug("running clean command", "command", command, "dir", dir)
	output, err = c.Runner.Run(ctx, dir, args[0], args[1:]...)
	if IsLaunchError(err) {
		return false, output, errors.Wrapf(err, "run %q", command)
	}
	if err != nil {
		c.Logger.Warn("clean command failed", "command", command, "err", err, "output", string(output))
	}
	return true, output, nil
}

//Scan lists the names of the non-directory entries directly inside dir.
//Symlinks to directories count as directories.
func (c *Cleaner) Scan(dir string) ([]string, error) {
	entries, err := afero.ReadDir(c.Fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := c.Fs.Stat(filepath.Join(dir, entry.Name()))
			if err == nil && target.IsDir() {
				continue
			}
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (c *Cleaner) removeUnlisted(dir string, names []string, result *Result) error {
	keep := c.Config.KeepSet()
	var errs *multierror.Error

	for _, name := range names {
		if keep[name] {
			result.Kept = append(result.Kept, name)
			continue
		}

		if c.DryRun {
			c.Logger.Info("would remove", "file", name)
			result.Removed = append(result.Removed, name)
			continue
		}

		if err := c.Fs.Remove(filepath.Join(dir, name)); err != nil {
			err = errors.Wrapf(err, "remove %s", name)
			if !c.KeepGoing {
				return err
			}
			c.Logger.Error("remove failed", "file", name, "err", err)
			errs = multierror.Append(errs, err)
			continue
		}
		c.Logger.Debug("removed", "file", name)
		result.Removed = append(result.Removed, name)
	}

	return errs.ErrorOrNil()
}

//isReadable reports whether name is a regular file that can be opened for reading.
//Only regular files are opened, a fifo would block the open.
func isReadable(fs afero.Fs, name string) bool {
	info, err := fs.Stat(name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := fs.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
