package archive

import (
	"context"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC)

	name := ObjectName("pricefeed", Artifact{Supplier: "autofix", RunID: "r1", Path: "/tmp/out/autofix_20240307.xlsx"}, at)
	assert.Equal(t, "pricefeed/autofix/2024/03/r1-autofix_20240307.xlsx", name)

	name = ObjectName("", Artifact{Supplier: "repcar", Path: "repcar.xlsx"}, at)
	assert.Equal(t, "repcar/2024/03/repcar.xlsx", name)
}

func TestComputeChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.xlsx")
	content := []byte("price list")
	require.NoError(t, os.WriteFile(path, content, 0644))

	sums, err := ComputeChecksums(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), sums.Size)
	assert.Equal(t, crc32.Checksum(content, crc32.MakeTable(crc32.Castagnoli)), sums.CRC32C)
	assert.Len(t, sums.SHA256, 64)

	_, err = ComputeChecksums(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	local := Checksums{Size: 10, CRC32C: 42}

	assert.NoError(t, Verify(local, &storage.ObjectAttrs{Size: 10, CRC32C: 42}))
	assert.ErrorContains(t, Verify(local, &storage.ObjectAttrs{Size: 11, CRC32C: 42}), "size mismatch")
	assert.ErrorContains(t, Verify(local, &storage.ObjectAttrs{Size: 10, CRC32C: 1}), "crc32c mismatch")
}

func TestNewClient_RequiresBucket(t *testing.T) {
	_, err := NewClient(context.Background(), config.ArchiveConfig{Enabled: true})
	assert.Error(t, err)
}
