package convert

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	po "github.com/minios-linux/l20n2po/pofile"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "app.ftl")
	tmpl := filepath.Join(dir, "old.po")
	out := filepath.Join(dir, "out", "app.po")
	writeFile(t, in, "hello = Hello\nbye = Bye\n")
	writeFile(t, tmpl, "#: hello\nmsgid \"Hello\"\nmsgstr \"Hallo\"\n")

	res, err := ConvertFile(in, out, tmpl, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Units)
	assert.Equal(t, 1, res.Carried)

	f, err := po.ParseFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Hallo", unitAt(f, "hello").Target)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestConvertFileFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "app.ftl")
	out := filepath.Join(dir, "app.po")
	writeFile(t, in, "hello = Hello\n")

	_, err := ConvertFile(in, out, filepath.Join(dir, "missing.po"), testOptions())
	require.Error(t, err)

	writeFile(t, filepath.Join(dir, "broken.po"), "not a po file\n")
	_, err = ConvertFile(in, out, filepath.Join(dir, "broken.po"), testOptions())
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output must not exist after a failed conversion")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".app.po.", "temporary file left behind")
	}

	_, err = ConvertFile(filepath.Join(dir, "missing.ftl"), out, "", testOptions())
	require.Error(t, err)
}

func TestConvertTree(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "src")
	out := filepath.Join(root, "po")
	tmpl := filepath.Join(root, "old")

	writeFile(t, filepath.Join(in, "main.ftl"), "title = Title\n")
	writeFile(t, filepath.Join(in, "nested", "menu.l20n"), "open = Open\nclose = Close\n")
	writeFile(t, filepath.Join(in, "README.md"), "not a source\n")
	writeFile(t, filepath.Join(tmpl, "nested", "menu.po"), "#: open\nmsgid \"Open\"\nmsgstr \"Offnen\"\n")

	var seen []string
	opts := TreeOptions{Options: testOptions(), Jobs: 2, OnFile: func(rel string, res Result) {
		seen = append(seen, rel)
	}}
	res, err := ConvertTree(context.Background(), in, out, tmpl, opts)
	require.NoError(t, err)

	assert.Equal(t, TreeResult{Files: 2, Units: 3, Carried: 1}, res)
	sort.Strings(seen)
	assert.Equal(t, []string{"main.ftl", filepath.Join("nested", "menu.l20n")}, seen)

	menu, err := po.ParseFile(filepath.Join(out, "nested", "menu.po"))
	require.NoError(t, err)
	assert.Equal(t, "Offnen", unitAt(menu, "open").Target)
	assert.FileExists(t, filepath.Join(out, "main.po"))
	assert.NoFileExists(t, filepath.Join(out, "README.po"))
}

func TestConvertTreePOT(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "src")
	out := filepath.Join(root, "pot")
	writeFile(t, filepath.Join(in, "main.ftl"), "title = Title\n")

	opts := TreeOptions{Options: testOptions()}
	opts.POT = true
	res, err := ConvertTree(context.Background(), in, out, "", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Files)
	assert.FileExists(t, filepath.Join(out, "main.pot"))
}

func TestConvertTreeErrors(t *testing.T) {
	_, err := ConvertTree(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir(), "", TreeOptions{})
	require.Error(t, err)

	root := t.TempDir()
	in := filepath.Join(root, "src")
	tmpl := filepath.Join(root, "old")
	writeFile(t, filepath.Join(in, "a.ftl"), "a = A\n")
	writeFile(t, filepath.Join(tmpl, "a.po"), "garbage\n")
	_, err = ConvertTree(context.Background(), in, filepath.Join(root, "out"), tmpl, TreeOptions{Options: testOptions()})
	require.Error(t, err)
}

func TestHasExt(t *testing.T) {
	assert.True(t, hasExt("a/b.FTL", DefaultExtensions))
	assert.True(t, hasExt("b.l20n", DefaultExtensions))
	assert.False(t, hasExt("b.po", DefaultExtensions))
}
