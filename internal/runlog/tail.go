package runlog

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxTailBytes bounds how much of the log file is read when tailing (256KB)
const MaxTailBytes = 256 * 1024

// Tail returns up to n lines from the end of the log file at path.
// Only the last MaxTailBytes of the file are examined.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat run log: %w", err)
	}

	offset := int64(0)
	if info.Size() > MaxTailBytes {
		offset = info.Size() - MaxTailBytes
	}

	// The window's first line is only partial when the byte before the
	// window is not a line break.
	firstCut := false
	if offset > 0 {
		var b [1]byte
		if _, err := f.ReadAt(b[:], offset-1); err != nil || b[0] != '\n' {
			firstCut = true
		}
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek run log: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if firstCut && len(lines) > 0 {
		lines = lines[1:]
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return lines, nil
}
