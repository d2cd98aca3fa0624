package tasks

import (
	"path/filepath"

	"github.com/angrypie/sipclean/types"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	yaml "gopkg.in/yaml.v2"
)

var ErrConfigNotFound = errors.New("config not found")

//ReadConfigFile loads the clean configuration for dest.
//When configPath is empty sipclean.yaml is looked up in dest.
func ReadConfigFile(fs afero.Fs, dest, configPath string) (*types.CleanConfig, error) {
	if configPath == "" {
		configPath = filepath.Join(dest, types.ConfigFileName)
	}

	exists, err := afero.Exists(fs, configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", configPath)
	}
	if !exists {
		return nil, ErrConfigNotFound
	}

	buf, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", configPath)
	}

	config, err := configFromYaml(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", configPath)
	}

	//Config stored next to the artifacts must survive the clean.
	inDest, err := sameDir(filepath.Dir(configPath), dest)
	if err != nil {
		return nil, err
	}
	if inDest {
		config.AddKeep(filepath.Base(configPath))
	}

	return config, nil
}

//LoadConfig is ReadConfigFile falling back to the defaults
//when the implicit config file does not exist.
func LoadConfig(fs afero.Fs, dest, configPath string) (*types.CleanConfig, error) {
	config, err := ReadConfigFile(fs, dest, configPath)
	if err == ErrConfigNotFound && configPath == "" {
		return types.DefaultConfig(), nil
	}
	if err == ErrConfigNotFound {
		return nil, errors.Wrapf(err, "%s", configPath)
	}
	return config, err
}

func configFromYaml(buf []byte) (*types.CleanConfig, error) {
	config := &types.CleanConfig{}
	if err := yaml.UnmarshalStrict(buf, config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
