package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/filex"
	"github.com/dmitrijs2005/userbook/internal/models"
)

const jsonIndent = "    "

// JSONFileRepository stores the collection as a pretty-printed JSON array in
// a single file. Each Save rewrites the file through a temp file and rename.
type JSONFileRepository struct {
	path string
}

func NewJSONFileRepository(path string) *JSONFileRepository {
	return &JSONFileRepository{path: path}
}

func (r *JSONFileRepository) Location() string { return r.path }

func (r *JSONFileRepository) Close() error { return nil }

func (r *JSONFileRepository) Load(ctx context.Context) ([]models.User, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, common.ErrStorageNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read users file %s: %w", r.path, err)
	}
	return decodeUsers(b)
}

func (r *JSONFileRepository) Save(ctx context.Context, users []models.User) error {
	b, err := encodeUsers(users)
	if err != nil {
		return err
	}
	if err := filex.EnsureParentDir(r.path); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(r.path, b, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}

// encodeUsers renders users as the on-disk document: a JSON array indented
// with four spaces, non-ASCII and HTML characters written literally, ending
// in a newline. A nil slice is written as an empty array.
func encodeUsers(users []models.User) ([]byte, error) {
	if users == nil {
		users = []models.User{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(users); err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	return unescapeLineSeparators(buf.Bytes()), nil
}

// unescapeLineSeparators writes U+2028 and U+2029 literally. encoding/json
// escapes both even with HTML escaping off. Escape sequences are consumed
// whole, so an escaped backslash followed by "u2028" text is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+5 < len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = utf8.AppendRune(out, '\u2028')
				i += 5
				continue
			case "2029":
				out = utf8.AppendRune(out, '\u2029')
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

func decodeUsers(b []byte) ([]models.User, error) {
	var users []models.User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptStorage, err)
	}
	return users, nil
}

var _ Repository = (*JSONFileRepository)(nil)
