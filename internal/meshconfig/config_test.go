package meshconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Load_appliesYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("id: 7\nrole: router\nprob_to_combine: 40\nlisten: 127.0.0.1:9901\n"), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, uint32(7), cfg.ID)
	assert.Equal(t, RoleRouter, cfg.Role)
	assert.Equal(t, 40, cfg.ProbToCombine)
	assert.Equal(t, "127.0.0.1:9901", cfg.Listen)
}

func Test_ApplyLocalOverride_missingFileIsNotAnError(t *testing.T) {
	cfg := Default()
	out, err := ApplyLocalOverride(cfg, filepath.Join(t.TempDir(), ".netcodingrc"))
	assert.NoError(t, err)
	assert.Equal(t, cfg, out)
}

func Test_ApplyLocalOverride_parsesCommentedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".netcodingrc")
	doc := `{
		// bumped while chasing buffer-full drops on the bench rig
		"prob_to_combine": 85,
	}`
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := ApplyLocalOverride(Default(), path)
	assert.NoError(t, err)
	assert.Equal(t, 85, cfg.ProbToCombine)
}

func Test_Validate_rejectsUnknownRole(t *testing.T) {
	cfg := Default()
	cfg.Role = "bogus"
	assert.Error(t, cfg.Validate())
}

func Test_Validate_rejectsOutOfRangeProbability(t *testing.T) {
	cfg := Default()
	cfg.ProbToCombine = 101
	assert.Error(t, cfg.Validate())
}
