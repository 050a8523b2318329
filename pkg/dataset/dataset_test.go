package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleIsValid(t *testing.T) {
	d, err := New(Sample())
	require.NoError(t, err)
	assert.Equal(t, 60, d.Len())

	c, ok := d.Lookup(41)
	require.True(t, ok)
	assert.Equal(t, "Redux Toolkit", c.Name)
	assert.Equal(t, 40, d.Position(41))
	assert.Equal(t, -1, d.Position(999))
}

func TestSampleReturnsCopy(t *testing.T) {
	a := Sample()
	a[0].Name = "changed"
	assert.Equal(t, "React Query", Sample()[0].Name)
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]Candidate{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 1, Name: "c"}})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLookupMissing(t *testing.T) {
	d, err := New([]Candidate{{ID: 7, Name: "seven"}})
	require.NoError(t, err)
	_, ok := d.Lookup(8)
	assert.False(t, ok)
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]FileFormat{
		"a.json":       FormatJSON,
		"dir/b.TOML":   FormatTOML,
		"c.msgpack":    FormatMsgpack,
		"d.mpk":        FormatMsgpack,
		"e.txt":        FormatUnknown,
		"no_extension": FormatUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectFormat(name), name)
	}
}

func TestWriteReadRoundTripEachFormat(t *testing.T) {
	dir := t.TempDir()
	items := Sample()[:5]

	for _, name := range []string{"set.json", "set.toml", "set.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, items))

			d, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, items, d.Items())
		})
	}
}

func TestLoadGlobConcatenatesInPathOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))

	require.NoError(t, WriteFile(filepath.Join(dir, "b.json"), []Candidate{{ID: 3, Name: "three"}}))
	require.NoError(t, WriteFile(filepath.Join(dir, "a.toml"), []Candidate{{ID: 1, Name: "one"}, {ID: 2, Name: "two"}}))
	require.NoError(t, WriteFile(filepath.Join(dir, "nested", "c.msgpack"), []Candidate{{ID: 4, Name: "four"}}))

	d, err := LoadGlob(filepath.Join(dir, "**", "*.{json,toml,msgpack}"))
	require.NoError(t, err)

	var ids []int
	for _, c := range d.Items() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestLoadGlobNoMatches(t *testing.T) {
	_, err := LoadGlob(filepath.Join(t.TempDir(), "*.json"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesSample(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Sample(), d.Items())
}

func TestReadFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	_, err := ReadFile(path)
	assert.Error(t, err)
}
