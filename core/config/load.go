package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	// BasePathFs rejects relative bases like ".".
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return LoadFs(afero.NewBasePathFs(afero.NewOsFs(), abs))
}

// LoadFs loads the configuration stored at the root of fs.
func LoadFs(fs afero.Fs) (*Configuration, error) {
	configContents, err := afero.ReadFile(fs, ConfigurationName)
	if err != nil {
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", ConfigurationName, err)
	}

	out.configFs = fs
	return &out, nil
}

// Initialize writes a default configuration and a new host key to the
// directory. Existing files are kept.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	if err := InitializeFs(afero.NewBasePathFs(osFs, dir), logger); err != nil {
		return nil, err
	}
	return Load(dir)
}

// InitializeFs is like Initialize but writes to the root of fs.
func InitializeFs(fs afero.Fs, logger *log.Logger) error {
	if ok, err := afero.Exists(fs, ConfigurationName); err != nil {
		return err
	} else if ok {
		logger.Info("Keeping existing configuration", "file", ConfigurationName)
	} else {
		logger.Info("Writing default configuration", "file", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return err
		}
	}

	if ok, err := afero.Exists(fs, PrivateKeyName); err != nil {
		return err
	} else if ok {
		logger.Info("Keeping existing host key", "file", PrivateKeyName)
	} else {
		logger.Info("Generating host key", "file", PrivateKeyName)
		keyPem, err := generateHostKey()
		if err != nil {
			return err
		}
		if err := afero.WriteFile(fs, PrivateKeyName, keyPem, 0600); err != nil {
			return err
		}
	}

	return fs.MkdirAll(FilesDirName, 0700)
}

func generateHostKey() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	block, err := ssh.MarshalPrivateKey(priv, "nopwsh host key")
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(block), nil
}
