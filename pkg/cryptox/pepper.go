package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const pepperSize = 32

// LoadPepper reads the pepper kept at path, creating the file with a fresh
// random value on first start. Losing the file invalidates every stored
// password hash.
func LoadPepper(path string) ([]byte, error) {
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		p := strings.TrimSpace(string(b))
		if p == "" {
			return nil, fmt.Errorf("pepper file %s is empty", path)
		}
		return []byte(p), nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create pepper dir: %w", err)
	}

	raw := make([]byte, pepperSize)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	p := base64.RawURLEncoding.EncodeToString(raw)

	// O_EXCL so two processes racing on first start agree on one value.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return LoadPepper(path)
	}
	if err != nil {
		return nil, fmt.Errorf("create pepper: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(p); err != nil {
		return nil, fmt.Errorf("write pepper: %w", err)
	}
	return []byte(p), nil
}
