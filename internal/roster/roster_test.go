package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/upload-reconciler/internal/fault"
)

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"Smith"`: "Smith",
		"Smith":   "mit",
		`""`:      "",
		`"`:       "",
		"":        "",
		`"Šarić"`: "Šarić",
	}
	for in, want := range tests {
		assert.Equal(t, want, Unquote(in), "Unquote(%q)", in)
	}
}

func TestReadBuildsDisplayRecords(t *testing.T) {
	input := `0036123456;"Smith";"John";"X"
0036234567;"Doe";"Jane";"Y";ignored
`
	table, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	s, ok := table.Lookup("0036123456")
	require.True(t, ok)
	assert.Equal(t, "0036123456\tJohn\tSmith\tX", s.Display())

	s, ok = table.Lookup("0036234567")
	require.True(t, ok)
	assert.Equal(t, Student{ID: "0036234567", Surname: "Doe", FirstName: "Jane", Extra: "Y"}, s)

	_, ok = table.Lookup("0036999999")
	assert.False(t, ok)
}

func TestReadLastDuplicateWins(t *testing.T) {
	input := "1;\"A\";\"B\";\"C\"\n1;\"D\";\"E\";\"F\"\n"
	table, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	s, _ := table.Lookup("1")
	assert.Equal(t, "1\tE\tD\tF", s.Display())
}

func TestReadMalformedLineIsFatal(t *testing.T) {
	input := "1;\"A\";\"B\";\"C\"\n2;\"A\";\"B\"\n"
	_, err := Read(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, fault.IsFatal(err))

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Line)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte("0036123456;\"Smith\";\"John\";\"X\"\r\n"), 0o644))

	table, err := Load(path, "UTF-8")
	require.NoError(t, err)
	s, ok := table.Lookup("0036123456")
	require.True(t, ok)
	assert.Equal(t, "X", s.Extra)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), "")
	require.Error(t, err)
	assert.True(t, fault.Is(fault.IO, err))
	assert.False(t, fault.IsFatal(err))
}

func TestLoadLegacyCodePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	raw := []byte("0036234567;\"Doe\";\"Jane\";\"Y\"\n0036123456;\"\x8Aimi\x9A\";\"John\";\"X\"\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err := Load(path, "")
	require.Error(t, err)
	assert.True(t, fault.IsFatal(err))
	assert.Contains(t, err.Error(), path+":2:")

	table, err := Load(path, "windows-1250")
	require.NoError(t, err)
	s, ok := table.Lookup("0036123456")
	require.True(t, ok)
	assert.Equal(t, "Šimiš", s.Surname)
}
