// Package extraction turns raw resume files into plain text and pulls
// best-effort contact details out of that text.
package extraction

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// minExtractedTextLength guards against extractions that technically
	// succeed but return nothing useful.
	minExtractedTextLength = 50

	// DefaultChunkSize and DefaultChunkOverlap bound how much resume text
	// reaches the embedding provider and the judge prompt.
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 150
)

// ExtractText extracts plain text from a resume payload. Supported formats
// are .txt, .pdf (via pdftotext) and .doc (via antiword). A failure here is
// a per-file error: the caller drops only this resume.
func ExtractText(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt":
		text := sanitizeUTF8(string(data))
		if len(text) < minExtractedTextLength {
			return "", fmt.Errorf("extracted text too short for %s", filename)
		}
		return text, nil
	case ".pdf":
		return extractWithTool(data, filename, "pdftotext", func(path string) *exec.Cmd {
			return exec.Command("pdftotext", "-layout", path, "-")
		})
	case ".doc":
		return extractWithTool(data, filename, "antiword", func(path string) *exec.Cmd {
			return exec.Command("antiword", path)
		})
	case ".docx":
		return "", fmt.Errorf("docx extraction is not supported, convert %s to pdf or txt", filename)
	default:
		return "", fmt.Errorf("unsupported file type %q for %s", ext, filename)
	}
}

// extractWithTool writes the payload to a temp file and shells out to a
// text extraction tool, the same approach resume tooling commonly takes for
// binary document formats.
func extractWithTool(data []byte, filename, tool string, build func(path string) *exec.Cmd) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", filename, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file for %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file for %s: %w", filename, err)
	}

	output, err := build(tmp.Name()).Output()
	if err != nil {
		return "", fmt.Errorf("%s failed for %s: %w", tool, filename, err)
	}

	text := sanitizeUTF8(string(output))
	if len(text) < minExtractedTextLength {
		return "", fmt.Errorf("extracted text too short for %s", filename)
	}

	return text, nil
}

// ChunkText splits text into rune-based chunks of the given size with the
// given overlap between consecutive chunks. It never returns an empty slice
// for non-empty input.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{string(runes)}
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// FirstChunks joins up to n leading chunks into a single excerpt.
func FirstChunks(text string, n, size int) string {
	chunks := ChunkText(text, size, DefaultChunkOverlap)
	if len(chunks) > n {
		chunks = chunks[:n]
	}
	return strings.Join(chunks, "\n\n")
}

// sanitizeUTF8 replaces invalid byte sequences so the text is safe to embed
// into JSON prompts.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}
