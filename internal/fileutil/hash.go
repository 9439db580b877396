package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// HashBytes hashes data the same way HashFile hashes file contents.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// ScanFileHashes hashes files (relative to dir). Files that vanished or
// cannot be read are left out.
func ScanFileHashes(dir string, files []string) map[string]string {
	hashes := make(map[string]string, len(files))
	for _, rel := range files {
		hash, err := HashFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		hashes[rel] = hash
	}
	return hashes
}

// Fingerprint combines per-file hashes into one order-independent value.
func Fingerprint(hashes map[string]string) string {
	paths := make([]string, 0, len(hashes))
	for path := range hashes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, path := range paths {
		fmt.Fprintf(h, "%s\x00%s\n", path, hashes[path])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
