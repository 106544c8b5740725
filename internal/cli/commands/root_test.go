package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/ormschema/internal/orm/metadata"
)

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("metadata/entityDefs/Account.yaml", `
fields:
  name:
    type: varchar
    maxLength: 150
links:
  contacts:
    type: manyMany
    entity: Contact
    foreign: accounts
`)
	write("metadata/entityDefs/Contact.yaml", `
fields:
  name:
    type: varchar
links:
  accounts:
    type: manyMany
    entity: Account
    foreign: contacts
`)
	write("ormschema.yaml", "log:\n  level: error\n")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "ormschema", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, expected := range []string{"version", "compile", "ddl", "inspect", "diff", "watch"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "log-level", "definitions", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ormschema version: 1.0.0-test")
	assert.Contains(t, out, "Git commit: abc123")
}

func TestCompileCommand(t *testing.T) {
	setupProject(t)

	out, err := run(t, "compile")
	require.NoError(t, err)

	var compiled map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &compiled))
	assert.Contains(t, compiled, "Account")
	assert.Contains(t, compiled, "Contact")
	assert.Contains(t, compiled, "AccountContact")

	fields := compiled["Account"]["fields"].(map[string]any)
	name := fields["name"].(map[string]any)
	assert.Equal(t, float64(150), name["len"])
}

func TestCompileCommand_YAMLToFile(t *testing.T) {
	dir := setupProject(t)
	path := filepath.Join(dir, "build", "schema.yaml")

	out, err := run(t, "compile", "--format", "yaml", "-o", path, "--entity", "Account")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var compiled map[string]any
	require.NoError(t, yaml.Unmarshal(data, &compiled))
	assert.Len(t, compiled, 1)
	assert.Contains(t, compiled, "Account")
}

func TestCompileCommand_UnknownEntity(t *testing.T) {
	setupProject(t)

	_, err := run(t, "compile", "--entity", "Acount")
	require.Error(t, err)

	var notFound *entityNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, describe(err), "Did you mean: Account?")
}

func TestCompileCommand_InvalidConfig(t *testing.T) {
	dir := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ormschema.yaml"), []byte("output:\n  format: xml\n"), 0o644))

	_, err := run(t, "compile")
	require.Error(t, err)
	assert.True(t, errors.Is(err, metadata.ErrConfiguration))
	assert.Contains(t, describe(err), "CONFIGURATION ERROR")
}

func TestDDLCommand(t *testing.T) {
	setupProject(t)

	out, err := run(t, "ddl", "--entity", "Account", "--entity", "AccountContact")
	require.NoError(t, err)

	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "account" (`)
	assert.Contains(t, out, `"name" VARCHAR(150)`)
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "account_contact" (`)
	assert.NotContains(t, out, `"contact" (`)
}

func TestInspectCommand(t *testing.T) {
	setupProject(t)

	out, err := run(t, "inspect")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Entity"))
	assert.True(t, strings.HasPrefix(lines[2], "Account "))
	assert.True(t, strings.HasPrefix(lines[4], "AccountContact"))
}

func TestDefinitionsFlagOverridesConfig(t *testing.T) {
	dir := setupProject(t)

	_, err := run(t, "compile", "-d", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, describe(err), "COMPILE FAILED")
}

func TestDescribe(t *testing.T) {
	color.NoColor = true

	assert.Contains(t, describe(context.Canceled), "interrupted")
	assert.Contains(t, describe(fmt.Errorf("wrapped: %w", metadata.ErrConfiguration)), "CONFIGURATION ERROR")
}

func TestDiffCommand(t *testing.T) {
	dir := setupProject(t)
	custom := filepath.Join(dir, "custom", "entityDefs")
	require.NoError(t, os.MkdirAll(custom, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(custom, "Account.yaml"), []byte(`
fields:
  name:
    maxLength: 100
  code:
    type: varchar
    notNull: true
`), 0o644))

	out, err := run(t, "diff", "--base", "metadata", "-d", "metadata", "-d", "custom")
	require.NoError(t, err)
	assert.Contains(t, out, "add_field")
	assert.Contains(t, out, "modify_field")
	assert.Contains(t, out, "code")

	_, err = run(t, "diff", "--base", "metadata", "-d", "metadata", "-d", "custom", "--fail-on-breaking")
	assert.Error(t, err)

	out, err = run(t, "diff", "--base", "metadata")
	require.NoError(t, err)
	assert.Contains(t, out, "No schema changes")
}
