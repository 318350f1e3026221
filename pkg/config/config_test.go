package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Limit int    `yaml:"limit"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadKeepsDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "notes")
	path := writeFile(t, "name: ${SAMPLE_NAME}\nport: 9000\n")

	cfg := sample{Port: 1, Limit: 5}
	require.NoError(t, Load(path, &cfg))
	assert.Equal(t, sample{Name: "notes", Port: 9000, Limit: 5}, cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "port: 1\nprot: 2\n")
	cfg := sample{}
	assert.Error(t, Load(path, &cfg))
}

func TestLoadValidates(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	cfg := sample{}
	err := Load(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be positive")
}

func TestLoadMissingFile(t *testing.T) {
	cfg := sample{Port: 1}
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 8080}
	require.NoError(t, LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg))
	assert.Equal(t, 8080, cfg.Port)

	bad := sample{}
	assert.Error(t, LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &bad))
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg := sample{Port: 3}
	require.NoError(t, Decode([]byte(""), &cfg))
	assert.Equal(t, 3, cfg.Port)
}
