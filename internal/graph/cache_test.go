package graph

import (
	"fmt"
	"runtime"
	"testing"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/bidsgraph/internal/codec"
)

const reclaimTimeout = 5 * time.Second

func writeFile(t *testing.T, fsys billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0o644))
}

// reclaimed polls until the collector has cleared whatever cached reports.
func reclaimed(t *testing.T, cached func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return !cached()
	}, reclaimTimeout, 10*time.Millisecond)
}

// rowsOf decodes once and returns a copy so no reference to the cached value
// outlives the call.
func rowsOf(f *File) []map[string]string {
	c := f.Contents()
	if c == nil {
		return nil
	}
	return append([]map[string]string(nil), c.Rows()...)
}

func participantsFixture(t *testing.T) (*Dataset, *File) {
	t.Helper()
	fsys := memfs.New()
	writeFile(t, fsys, "/data/ds1/participants.tsv", "participant_id\tage\nsub-01\t20\nsub-02\t31\n")
	writeFile(t, fsys, "/data/ds1/notes.txt", "hello\n")
	ds := NewDataset("ds1", "/data/ds1", Options{FS: fsys})
	f := ds.CreateFile("participants.tsv")
	ds.CreateFile("notes.txt")
	return ds, f
}

func TestContents_SharedWhileHeld(t *testing.T) {
	_, f := participantsFixture(t)

	first := f.Contents()
	require.NotNil(t, first)
	second := f.Contents()
	assert.Same(t, first, second)
	assert.Len(t, second.Rows(), 2)
	runtime.KeepAlive(first)
}

func TestContents_ReclaimedThenReloaded(t *testing.T) {
	_, f := participantsFixture(t)

	rows := rowsOf(f)
	require.Len(t, rows, 2)
	reclaimed(t, f.Cached)

	assert.Equal(t, rows, rowsOf(f), "re-decoded from disk")
}

func TestContents_PinnedValuesSurviveCollection(t *testing.T) {
	fsys := memfs.New()
	writeFile(t, fsys, "/ds/a.txt", "a\n")
	writeFile(t, fsys, "/ds/b.txt", "b\n")
	ds := NewDataset("ds", "/ds", Options{FS: fsys, PinnedContents: 1})
	a := ds.CreateFile("a.txt")
	b := ds.CreateFile("b.txt")

	assert.Equal(t, 1, a.Contents().Len())
	runtime.GC()
	runtime.GC()
	assert.True(t, a.Cached(), "a is pinned")

	assert.Equal(t, []string{"b"}, b.Contents().Lines())
	reclaimed(t, a.Cached)
	assert.True(t, b.Cached())
}

func TestSetContents_NeverEvicted(t *testing.T) {
	ds, f := participantsFixture(t)
	notes := ds.GetFile("notes.txt").AsFile()

	notes.SetContents([]string{"edited"})
	assert.True(t, notes.Assigned())
	runtime.GC()
	runtime.GC()
	assert.Equal(t, []string{"edited"}, notes.Contents().Lines())

	notes.SetContents(nil)
	assert.False(t, notes.Assigned())
	assert.Equal(t, []string{"hello"}, notes.Contents().Lines())

	f.SetContents(&Contents{Value: []map[string]string{{"participant_id": "sub-09"}}})
	assert.Equal(t, "sub-09", f.Contents().Rows()[0]["participant_id"])
}

func TestContents_Unavailable(t *testing.T) {
	ds, _ := participantsFixture(t)
	writeFile(t, ds.FS(), "/data/ds1/scan.nii", "\x00\x01")
	writeFile(t, ds.FS(), "/data/ds1/broken.json", "{")

	assert.Nil(t, ds.CreateFile("scan.nii").Contents(), "no codec")
	assert.Nil(t, ds.CreateFile("broken.json").Contents(), "decode failure")
	assert.Nil(t, ds.CreateFile("missing.tsv").Contents(), "no file")
	assert.Nil(t, ds.CreateFile("missing.tsv").Contents().Rows())
	assert.Zero(t, ds.CreateFile("missing.txt").Contents().Len())
}

func TestLoadContents_ReturnType(t *testing.T) {
	_, f := participantsFixture(t)
	v, err := f.LoadContents(codec.Options{ReturnType: codec.TSVColumns})
	require.NoError(t, err)
	assert.Equal(t, []string{"20", "31"}, v.(map[string][]string)["age"])
	assert.False(t, f.Cached(), "LoadContents bypasses the cache")
}

func TestSave(t *testing.T) {
	ds, _ := participantsFixture(t)
	out := ds.CreateFolder("derived").CreateFile("out.txt")
	require.Error(t, out.Save(), "nothing to save")

	out.SetContents([]string{"one", "two"})
	require.NoError(t, out.Save())
	data, err := util.ReadFile(ds.FS(), "/data/ds1/derived/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestDescription_Scenario(t *testing.T) {
	fsys := memfs.New()
	body := "participant_id\tage\n"
	for i := 1; i <= 16; i++ {
		body += fmt.Sprintf("sub-%02d\t30\n", i)
	}
	writeFile(t, fsys, "/data/ds1/participants.tsv", body)
	writeFile(t, fsys, "/data/ds1/dataset_description.json", `{"BIDSVersion": "1.0.0rc2", "Name": "demo"}`)

	ds := NewDataset("ds1", "/data/ds1", Options{FS: fsys})
	participants := NewArtifact("participants.tsv")
	participants.SetSuffix("participants")
	ds.AddFile(participants)
	ds.CreateFile(DescriptionFileName).SetTypeName("JsonFile")

	leaf := ds.GetFile("participants.tsv")
	require.NotNil(t, leaf)
	assert.Len(t, leaf.AsFile().Contents().Rows(), 16)
	assert.False(t, leaf.(*Artifact).HasEntity("run"))

	assert.Equal(t, "1.0.0rc2", describe(ds))
	reclaimed(t, ds.DescriptionCached)
	assert.Equal(t, "1.0.0rc2", describe(ds))
	assert.False(t, ds.DescriptionAssigned())
}

func describe(ds *Dataset) string {
	d := ds.Description()
	if d == nil {
		return ""
	}
	return d.BIDSVersion()
}

func TestDescription_Missing(t *testing.T) {
	ds := NewDataset("ds1", "/data/ds1", Options{FS: memfs.New()})
	assert.Nil(t, ds.Description())
}

func TestCreateDataset_SaveDescription(t *testing.T) {
	fsys := memfs.New()
	ds := CreateDataset("fresh", "/out/fresh", Options{FS: fsys})
	desc := ds.Description()
	require.NotNil(t, desc)
	assert.True(t, ds.DescriptionAssigned())
	assert.Equal(t, ds.Schema().VersionString(), desc.BIDSVersion())
	assert.Equal(t, "/out/fresh/dataset_description.json", desc.AbsolutePath())

	require.NoError(t, desc.Save())
	data, err := util.ReadFile(fsys, "/out/fresh/dataset_description.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"BIDSVersion"`)
	assert.Contains(t, string(data), `"fresh"`)
}
