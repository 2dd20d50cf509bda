package chat

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"ragchat/internal/widget"
)

// droppedFiles interprets a bracketed paste as a file drop. Terminals paste
// dragged files as their paths, quoted or backslash-escaped when they
// contain spaces, and some as file:// URIs. The paste is a drop only if it
// names at least one path and every path is an existing regular file. A
// bare word without a directory part is text, even if a file by that name
// exists in the working directory.
func droppedFiles(paste string) ([]widget.File, bool) {
	tokens := splitPaths(paste)
	if len(tokens) == 0 {
		return nil, false
	}

	files := make([]widget.File, 0, len(tokens))
	for _, tok := range tokens {
		path := tok
		if strings.HasPrefix(tok, "file://") {
			u, err := url.Parse(tok)
			if err != nil {
				return nil, false
			}
			path = u.Path
		} else if !strings.ContainsRune(tok, '/') && !strings.ContainsRune(tok, filepath.Separator) {
			return nil, false
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil, false
		}
		files = append(files, widget.LocalFile(path))
	}
	return files, true
}

// splitPaths splits on unquoted whitespace, honouring single quotes, double
// quotes and backslash escapes.
func splitPaths(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)
	flush := func() {
		if inToken {
			out = append(out, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return out
}
