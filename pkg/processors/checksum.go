package processors

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// ComputeChecksum returns the hex-encoded xxh3 hash of data.
func ComputeChecksum(data []byte) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxh3.Hash(data))
	return hex.EncodeToString(b)
}

// FileChecksum hashes a file with xxh3, streaming so large export
// artifacts do not load into memory.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, h.Sum64())
	return hex.EncodeToString(b), nil
}

// ValidateChecksum compares data against an expected hex-encoded hash.
func ValidateChecksum(data []byte, expected string) error {
	actual := ComputeChecksum(data)
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
