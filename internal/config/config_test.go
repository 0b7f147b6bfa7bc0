package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faturas.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
default_category = "sem_categoria"
db_path = "/tmp/test.db"
port = "9090"

[[categories]]
keywords = ["padaria", "mercado"]
category = "alimentacao"

[[categories]]
keywords = ["uber"]
category = "transporte"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sem_categoria", cfg.DefaultCategory)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "9090", cfg.Port)
	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "alimentacao", cfg.Categories[0].Category)
	assert.Equal(t, []string{"padaria", "mercado"}, cfg.Categories[0].Keywords)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "outros", cfg.DefaultCategory)
	assert.Equal(t, "./data/faturas.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.Categories)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nao-existe.toml"))
	assert.Error(t, err)
}

func TestRulesPreserveOrder(t *testing.T) {
	cfg := &Config{
		Categories: []CategoryRule{
			{Keywords: []string{"uber"}, Category: "transporte"},
			{Keywords: []string{"uber eats"}, Category: "alimentacao"},
		},
	}

	rules := cfg.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "transporte", rules[0].Label)
	assert.Equal(t, "alimentacao", rules[1].Label)
}

func TestRulesNilWhenUnconfigured(t *testing.T) {
	assert.Nil(t, Default().Rules())
}
