package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/theus-ai/omfetch/pkg/cli/config"
	"github.com/theus-ai/omfetch/pkg/domain/model"
)

func TestIdentity_ResolveDefault(t *testing.T) {
	cfg := &config.Identity{}
	record, err := cfg.Resolve()
	gt.NoError(t, err)
	gt.V(t, record).Equal(model.DefaultIdentity())
}

func TestIdentity_ResolveFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`
name = "Jane Roe"
email = "jane@example.com"
phone = "555-000-1111"
company = "Roe Holdings"
`), 0644))

	cfg := &config.Identity{File: path}
	record, err := cfg.Resolve()
	gt.NoError(t, err)
	gt.V(t, record.Name).Equal("Jane Roe")
	gt.V(t, record.Email).Equal("jane@example.com")
	gt.V(t, record.Company).Equal("Roe Holdings")
}

func TestIdentity_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`name = "Jane Roe"`), 0644))

	cfg := &config.Identity{File: path, Name: "John Smith"}
	record, err := cfg.Resolve()
	gt.NoError(t, err)
	gt.V(t, record.Name).Equal("John Smith")
	// Fields absent from file and flags keep the default
	gt.V(t, record.Email).Equal(model.DefaultIdentity().Email)
}

func TestIdentity_ResolveMissingFile(t *testing.T) {
	cfg := &config.Identity{File: filepath.Join(t.TempDir(), "absent.toml")}
	_, err := cfg.Resolve()
	gt.Error(t, err)
}
