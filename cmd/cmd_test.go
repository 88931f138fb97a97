package cmd

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// dataset lays out a small dataset in a temporary directory, makes that
// directory the working directory and returns the dataset root.
func dataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	root := filepath.Join(dir, "ds1")
	writeFile(t, filepath.Join(root, "dataset_description.json"), `{"BIDSVersion": "1.0.0rc2", "Name": "ds1"}`)
	writeFile(t, filepath.Join(root, "participants.tsv"), "participant_id\tage\nsub-01\t21\nsub-02\t22\n")
	writeFile(t, filepath.Join(root, "README"), "line one\nline two\n")
	writeFile(t, filepath.Join(root, "task-rest_bold.json"), `{"RepetitionTime": 2, "TaskName": "rest"}`)
	writeFile(t, filepath.Join(root, "sub-01", "anat", "sub-01_T1w.nii.gz"), "\x1f\x8b")
	writeFile(t, filepath.Join(root, "sub-01", "func", "sub-01_task-rest_run-01_bold.nii.gz"), "\x1f\x8b")
	writeFile(t, filepath.Join(root, "sub-01", "func", "sub-01_task-rest_run-01_bold.json"), `{"RepetitionTime": 1.5}`)
	writeFile(t, filepath.Join(root, "sub-02", "anat", "sub-02_T1w.nii.gz"), "\x1f\x8b")
	writeFile(t, filepath.Join(root, "derivatives", "fmriprep", "dataset_description.json"),
		`{"Name": "fmriprep", "BIDSVersion": "1.8.0", "GeneratedBy": [{"Name": "fmriprep"}]}`)
	writeFile(t, filepath.Join(root, "derivatives", "fmriprep", "sub-01", "anat", "sub-01_desc-brain_mask.nii.gz"), "\x1f\x8b")
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestLs(t *testing.T) {
	root := dataset(t)

	out, err := run(t, "ls", root, "--depth", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sub-01/",
		"sub-02/",
		"README",
		"dataset_description.json",
		"participants.tsv",
		"task-rest_bold.json",
		"derivatives/",
	}, lines(out))

	out, err = run(t, "ls", filepath.Join(root, "sub-01"), "--type", "Artifact")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sub-01/anat/sub-01_T1w.nii.gz",
		"sub-01/func/sub-01_task-rest_run-01_bold.json",
		"sub-01/func/sub-01_task-rest_run-01_bold.nii.gz",
	}, lines(out))

	out, err = run(t, "ls", filepath.Join(root, "sub-02"), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"sub-02_T1w.nii.gz"`)
	assert.Contains(t, out, `"T1w"`)
}

func TestQuery(t *testing.T) {
	root := dataset(t)

	out, err := run(t, "query", root, "--suffix", "T1w", "--scope", "raw")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"sub-01/anat/sub-01_T1w.nii.gz",
		"sub-02/anat/sub-02_T1w.nii.gz",
	}, lines(out))

	out, err = run(t, "query", root, "-e", "sub=01", "-e", "run=1", "-x", "nii.gz")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-01/func/sub-01_task-rest_run-01_bold.nii.gz"}, lines(out))

	out, err = run(t, "query", root, "-e", "desc=*")
	require.NoError(t, err)
	assert.Equal(t, []string{"derivatives/fmriprep/sub-01/anat/sub-01_desc-brain_mask.nii.gz"}, lines(out))

	_, err = run(t, "query", root, "--scope", "everything")
	assert.ErrorContains(t, err, "unknown scope")
	_, err = run(t, "query", root, "-e", "sub")
	assert.ErrorContains(t, err, "not key=value")
}

func TestEntities(t *testing.T) {
	root := dataset(t)

	out, err := run(t, "entities", root, "--scope", "raw")
	require.NoError(t, err)
	assert.Contains(t, lines(out), "sub: 01, 02")
	assert.Contains(t, lines(out), "task: rest")
	assert.NotContains(t, out, "desc:")
}

func TestCat(t *testing.T) {
	root := dataset(t)

	out, err := run(t, "cat", filepath.Join(root, "README"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", out)

	out, err = run(t, "cat", filepath.Join(root, "participants.tsv"), "--select", "$[*].age")
	require.NoError(t, err)
	assert.Contains(t, out, `"21"`)
	assert.Contains(t, out, `"22"`)

	out, err = run(t, "cat", filepath.Join(root, "sub-01", "func", "sub-01_task-rest_run-01_bold.nii.gz"), "--metadata")
	require.NoError(t, err)
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, `"rest"`)

	_, err = run(t, "cat", filepath.Join(root, "sub-01"))
	assert.ErrorContains(t, err, "is a folder")
	_, err = run(t, "cat", filepath.Join(root, "missing.txt"))
	assert.ErrorContains(t, err, "not part of dataset")
}

func TestDescribe(t *testing.T) {
	root := dataset(t)

	out, err := run(t, "describe", root)
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.0rc2")

	out, err = run(t, "describe", filepath.Join(root, "derivatives", "fmriprep", "sub-01"))
	require.NoError(t, err)
	assert.Contains(t, out, "1.8.0")
	assert.Contains(t, out, "GeneratedBy")
}

func TestExport(t *testing.T) {
	root := dataset(t)
	dbPath := filepath.Join(t.TempDir(), "out.db")

	out, err := run(t, "export", filepath.Join(root, "sub-02"), "-o", dbPath)
	require.NoError(t, err)
	// sub-02, anat, the artifact
	assert.Equal(t, "3 nodes written to "+dbPath+"\n", out)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	var value string
	require.NoError(t, db.QueryRow(`SELECT value FROM entities WHERE key = 'sub'`).Scan(&value))
	assert.Equal(t, "02", value)
}

func TestConfigErrors(t *testing.T) {
	root := dataset(t)

	_, err := run(t, "--config", filepath.Join(root, "nope.yaml"), "ls", root)
	assert.Error(t, err)

	writeFile(t, "bidsgraph.yaml", "cache:\n  pinned: -1\n")
	_, err = run(t, "ls", root)
	assert.ErrorContains(t, err, "invalid config")

	_, err = run(t, "--log-level", "loud", "ls", root)
	assert.ErrorContains(t, err, "invalid log level")
}
