package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/seqkit/dataset"
	"github.com/rushteam/seqkit/sequence"
)

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestWriter_WriteAll(t *testing.T) {
	table, err := dataset.LoadReader(context.Background(), strings.NewReader("u1 a\nu1 b\nu2 a\n"), nil, nil)
	require.NoError(t, err)
	train, test, err := sequence.Build(table, 1, 1)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	w := &Writer{Dir: dir}
	held, err := dataset.LoadReader(context.Background(), strings.NewReader("u2 b\nu1 c\n"), table.Users, table.Items)
	require.NoError(t, err)
	held.EncodeSequence()

	paths, err := w.WriteAll(context.Background(), Artifacts{
		Matrix:     table.ToCSR(),
		TestMatrix: held.ToCSR(),
		Train:      train,
		Test:       test,
		Users:      table.Users,
		Items:      table.Items,
	})
	require.NoError(t, err)
	assert.Len(t, paths, 6)

	var m Matrix
	readJSON(t, filepath.Join(dir, MatrixFile), &m)
	assert.Equal(t, [2]int{2, 3}, m.Shape)
	assert.Equal(t, []int{0, 2, 3}, m.IndPtr)
	assert.Equal(t, []int{1, 2, 1}, m.Indices)

	var tm Matrix
	readJSON(t, filepath.Join(dir, TestMatrixFile), &tm)
	assert.Equal(t, [2]int{2, 4}, tm.Shape)
	assert.Equal(t, []int{0, 1, 2}, tm.IndPtr)
	assert.Equal(t, []int{3, 2}, tm.Indices)

	var tr Sequences
	readJSON(t, filepath.Join(dir, TrainFile), &tr)
	assert.Equal(t, train.UserIDs, tr.UserIDs)
	assert.Equal(t, train.Sequences, tr.Sequences)
	assert.Equal(t, train.Targets, tr.Targets)
	assert.Equal(t, 1, tr.L)
	assert.Equal(t, 1, tr.T)

	var te Sequences
	readJSON(t, filepath.Join(dir, TestFile), &te)
	assert.Equal(t, test.Sequences, te.Sequences)
	assert.Nil(t, te.Targets)
	assert.Equal(t, 0, te.T)

	var items Vocabulary
	readJSON(t, filepath.Join(dir, ItemsFile), &items)
	assert.True(t, items.Shifted)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, items.Codes)
}

func TestWriter_SkipsNil(t *testing.T) {
	dir := t.TempDir()
	reg := dataset.NewRegistry()
	reg.Encode("u")

	paths, err := (&Writer{Dir: dir}).WriteAll(context.Background(), Artifacts{Users: reg})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, UsersFile)}, paths)

	_, err = os.Stat(filepath.Join(dir, TrainFile))
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := (&Writer{Dir: filepath.Join(file, "sub")}).WriteAll(context.Background(), Artifacts{})
	assert.Error(t, err)
}
