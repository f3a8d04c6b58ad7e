package convert

import (
	"os"
	"path/filepath"
	"strings"

	"unhex/internal/hexdec"
)

type InputKind int

const (
	LiteralInput InputKind = iota
	FileInput
	MissingFile
	Directory
)

func (k InputKind) String() string {
	switch k {
	case LiteralInput:
		return "literal"
	case FileInput:
		return "file"
	case MissingFile:
		return "missing file"
	case Directory:
		return "directory"
	default:
		return "unknown"
	}
}

// Classify decides whether the --input value names a file or is a literal.
// Existing files and directories win. Otherwise hex-looking values are
// literals, and anything shaped like a path is a file that does not exist.
func Classify(input string) InputKind {
	if fi, err := os.Stat(input); err == nil {
		if fi.IsDir() {
			return Directory
		}
		return FileInput
	}

	if o := hexdec.Decode(input); o.Source != hexdec.Plain {
		return LiteralInput
	}

	if looksLikePath(input) {
		return MissingFile
	}
	return LiteralInput
}

func looksLikePath(s string) bool {
	if strings.ContainsAny(s, " \t") {
		return false
	}
	if strings.ContainsRune(s, '/') || strings.ContainsRune(s, filepath.Separator) {
		return true
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".txt", ".pot", ".potfile", ".lst", ".list", ".dic", ".dict", ".out":
		return true
	}
	return false
}
