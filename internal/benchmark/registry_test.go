package benchmark

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Create_writesHeaderLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.csv")

	r, err := Create(path)
	assert.NoError(t, err)
	defer r.Close()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, HeaderLine, string(data))
}

func Test_Create_truncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.csv")
	assert.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0o644))

	r, err := Create(path)
	assert.NoError(t, err)
	defer r.Close()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, HeaderLine, string(data))
}

func Test_Record_appendsArrivalLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.csv")

	r, err := Create(path)
	assert.NoError(t, err)
	defer r.Close()

	at := time.Unix(1700000000, 7_000_000)
	assert.NoError(t, r.Record(at, 3, 42))
	assert.NoError(t, r.Record(at.Add(time.Second), 3, 43))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "1700000000.007,3,42", lines[1])
	assert.Equal(t, "1700000001.007,3,43", lines[2])
}

func Test_Record_concurrentAppendsAllLand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.csv")

	r, err := Create(path)
	assert.NoError(t, err)
	defer r.Close()

	const writers = 8
	const perWriter = 25
	done := make(chan struct{})
	for w := 0; w < writers; w++ {
		go func(node uint32) {
			for i := 0; i < perWriter; i++ {
				_ = r.Record(time.Now(), node, uint32(i))
			}
			done <- struct{}{}
		}(uint32(w))
	}
	for w := 0; w < writers; w++ {
		<-done
	}

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 1+writers*perWriter)
}
