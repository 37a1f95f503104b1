package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Artifact is a local file to archive.
type Artifact struct {
	Supplier string
	RunID    string
	Path     string
}

// Checksums of a local file, computed before upload.
type Checksums struct {
	Size   int64
	CRC32C uint32
	SHA256 string
}

// Result describes an archived object.
type Result struct {
	Bucket string
	Object string
	Size   int64
}

// Archiver copies normalized price lists into a GCS bucket and verifies them.
type Archiver struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
	logger zerolog.Logger
}

// NewArchiver creates an archiver over an open client.
func NewArchiver(client *storage.Client, bucket, prefix string, logger zerolog.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		logger: logger.With().Str("component", "Archiver").Logger(),
	}
}

// ObjectName is <prefix>/<supplier>/<YYYY>/<MM>/<run id>-<file name>.
func ObjectName(prefix string, a Artifact, at time.Time) string {
	at = at.UTC()
	name := filepath.Base(a.Path)
	if a.RunID != "" {
		name = a.RunID + "-" + name
	}
	return path.Join(prefix, a.Supplier, at.Format("2006"), at.Format("01"), name)
}

// ComputeChecksums reads the file once for size, CRC32C and SHA-256.
func ComputeChecksums(filePath string) (Checksums, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Checksums{}, common.WrapError(err, "failed to open artifact "+filePath)
	}
	defer file.Close()

	crc := crc32.New(crc32.MakeTable(crc32.Castagnoli))
	sha := sha256.New()
	size, err := io.Copy(io.MultiWriter(crc, sha), file)
	if err != nil {
		return Checksums{}, common.WrapError(err, "failed to hash artifact "+filePath)
	}
	return Checksums{Size: size, CRC32C: crc.Sum32(), SHA256: hex.EncodeToString(sha.Sum(nil))}, nil
}

// Verify compares the stored object attributes with the local checksums.
func Verify(local Checksums, attrs *storage.ObjectAttrs) error {
	if attrs.Size != local.Size {
		return fmt.Errorf("verify size mismatch: local=%d remote=%d", local.Size, attrs.Size)
	}
	if attrs.CRC32C != local.CRC32C {
		return fmt.Errorf("verify crc32c mismatch: local=%d remote=%d", local.CRC32C, attrs.CRC32C)
	}
	return nil
}

// Archive uploads one artifact and checks the stored size and CRC32C.
func (a *Archiver) Archive(ctx context.Context, artifact Artifact) (*Result, error) {
	sums, err := ComputeChecksums(artifact.Path)
	if err != nil {
		return nil, err
	}

	objName := ObjectName(a.prefix, artifact, a.now())
	obj := a.client.Bucket(a.bucket).Object(objName)

	file, err := os.Open(artifact.Path)
	if err != nil {
		return nil, common.WrapError(err, "failed to open artifact "+artifact.Path)
	}
	defer file.Close()

	w := obj.NewWriter(ctx)
	w.ChunkSize = 0
	w.ContentType = xlsxContentType
	w.CRC32C = sums.CRC32C
	w.SendCRC32C = true
	w.Metadata = map[string]string{
		"supplier": artifact.Supplier,
		"run_id":   artifact.RunID,
		"sha256":   sums.SHA256,
	}

	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return nil, common.WrapError(err, "failed to upload "+objName)
	}
	if err := w.Close(); err != nil {
		return nil, common.WrapError(err, "failed to finalize "+objName)
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, common.WrapError(err, "failed to read attributes of "+objName)
	}
	if err := Verify(sums, attrs); err != nil {
		return nil, err
	}

	a.logger.Info().
		Str("supplier", artifact.Supplier).
		Str("bucket", a.bucket).
		Str("object", objName).
		Int64("size", sums.Size).
		Msg("Archived price list")
	return &Result{Bucket: a.bucket, Object: objName, Size: sums.Size}, nil
}

// Close releases the underlying client.
func (a *Archiver) Close() error {
	return a.client.Close()
}
