package processors

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestComputeChecksum_Stable(t *testing.T) {
	a := ComputeChecksum([]byte("hello"))
	b := ComputeChecksum([]byte("hello"))
	if a != b {
		t.Errorf("same input, different hashes: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16 hex chars", len(a))
	}
	if ComputeChecksum([]byte("hello!")) == a {
		t.Error("different input must hash differently")
	}
}

func TestValidateChecksum(t *testing.T) {
	data := []byte("payload")
	if err := ValidateChecksum(data, ComputeChecksum(data)); err != nil {
		t.Errorf("valid checksum rejected: %v", err)
	}
	if err := ValidateChecksum(data, "0000000000000000"); err == nil {
		t.Error("wrong checksum accepted")
	}
}

func TestFileChecksum_MatchesInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	data := bytes.Repeat([]byte("abc123"), 10000)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FileChecksum(path)
	if err != nil {
		t.Fatalf("FileChecksum: %v", err)
	}
	if want := ComputeChecksum(data); got != want {
		t.Errorf("streamed hash %s != in-memory hash %s", got, want)
	}
}

func TestCompressFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	packed := filepath.Join(dir, "src.csv.zst")
	restored := filepath.Join(dir, "restored.csv")

	data := bytes.Repeat([]byte("Id,Name\n1,alice\n"), 5000)
	if err := os.WriteFile(src, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressFile(src, packed); err != nil {
		t.Fatalf("CompressFile: %v", err)
	}
	fi, err := os.Stat(packed)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() >= int64(len(data)) {
		t.Errorf("repetitive data did not shrink: %d >= %d", fi.Size(), len(data))
	}

	if err := DecompressFile(packed, restored); err != nil {
		t.Fatalf("DecompressFile: %v", err)
	}
	back, err := os.ReadFile(restored)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, data) {
		t.Error("round trip corrupted the data")
	}
}
