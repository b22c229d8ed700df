package history

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// previewBytes bounds the hex preview emitted for undecodable content.
const previewBytes = 256

// ReadContent returns the textual content of a snapshot, best effort. It
// tries a fixed ladder of encodings: strict UTF-8, then BOM-marked UTF-16
// little and big endian. When none decodes, it returns a bounded hex
// preview of the raw bytes with the true byte length. A read failure at
// the OS level (artifact vanished since the scan) yields a descriptive
// placeholder. ReadContent never fails outward.
func ReadContent(rec VersionRecord) string {
	data, err := os.ReadFile(rec.SourceRef)
	if err != nil {
		return fmt.Sprintf("[unreadable snapshot %s: %v]", rec.SourceRef, err)
	}

	// NUL bytes are valid UTF-8 but never appear in text this store keeps;
	// treat them as a decode failure so binaries fall through to the preview.
	if utf8.Valid(data) && !bytes.ContainsRune(data, 0) {
		return string(data)
	}

	for _, enc := range []unicode.Endianness{unicode.LittleEndian, unicode.BigEndian} {
		dec := unicode.UTF16(enc, unicode.ExpectBOM).NewDecoder()
		if decoded, _, err := transform.Bytes(dec, data); err == nil {
			return string(decoded)
		}
	}

	n := len(data)
	if n > previewBytes {
		n = previewBytes
	}
	return fmt.Sprintf("[binary content, %d bytes; first %d shown]\n%s",
		len(data), n, hex.Dump(data[:n]))
}

// ContentChecksum returns the xxh3-128 hex digest of a snapshot's bytes.
// Identical content in different folders hashes identically, which makes
// the digest a stable label for selecting a version.
func ContentChecksum(rec VersionRecord) (string, error) {
	data, err := os.ReadFile(rec.SourceRef)
	if err != nil {
		return "", fmt.Errorf("reading snapshot %s: %w", rec.SourceRef, err)
	}
	return fmt.Sprintf("%x", xxh3.Hash128(data).Bytes()), nil
}
