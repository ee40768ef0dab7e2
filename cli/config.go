package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/krancour/taskdash/internal/file"
	sessionFile "github.com/krancour/taskdash/internal/session/file"
	"github.com/pkg/errors"
)

type config struct {
	APIAddress string `json:"apiAddress"`
}

func getConfig() (*config, error) {
	taskdashHome, err := sessionFile.DefaultDir()
	if err != nil {
		return nil, errors.Wrapf(err, "error finding taskdash home")
	}
	taskdashConfigFile := filepath.Join(taskdashHome, "config")
	if !file.Exists(taskdashConfigFile) {
		return nil, errors.Errorf(
			"no taskdash configuration was found at %s; please use "+
				"`taskdash login` to continue\n",
			taskdashConfigFile,
		)
	}

	configBytes, err := ioutil.ReadFile(taskdashConfigFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading taskdash config file at %s",
			taskdashConfigFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing taskdash config file at %s",
			taskdashConfigFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	taskdashHome, err := sessionFile.DefaultDir()
	if err != nil {
		return errors.Wrapf(err, "error finding taskdash home")
	}
	if err = os.MkdirAll(taskdashHome, 0755); err != nil {
		return errors.Wrapf(
			err,
			"error creating taskdash home at %s",
			taskdashHome,
		)
	}
	taskdashConfigFile := filepath.Join(taskdashHome, "config")

	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	if err :=
		ioutil.WriteFile(taskdashConfigFile, configBytes, 0644); err != nil {
		return errors.Wrapf(err, "error writing to %s", taskdashConfigFile)
	}
	return nil
}

func deleteConfig() error {
	taskdashHome, err := sessionFile.DefaultDir()
	if err != nil {
		return errors.Wrapf(err, "error finding taskdash home")
	}
	taskdashConfigFile := filepath.Join(taskdashHome, "config")

	if err := os.Remove(taskdashConfigFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "error deleting configuration")
	}

	return nil
}
