// Package filestore keeps uploaded attachments on a filesystem and builds
// their public URLs.
package filestore

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tfshrms/worktracker/pkg/errors"
)

const defaultExtension = ".bin"

// Store writes decoded data-URL payloads below root.
type Store struct {
	fs         afero.Fs
	root       string
	publicBase string
}

// New creates a store over fs. Use afero.NewOsFs() in production and
// afero.NewMemMapFs() in tests.
func New(fs afero.Fs, root, publicBase string) *Store {
	return &Store{
		fs:         fs,
		root:       root,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Save decodes a "data:<mime>;base64,<body>" payload into
// <root>/<subfolder>/<uuid><ext> and returns the file name. An empty
// payload stores nothing and returns "".
func (s *Store) Save(payload, subfolder string) (string, error) {
	if payload == "" {
		return "", nil
	}

	header, encoded, ok := strings.Cut(payload, ",")
	if !ok {
		return "", errors.BadRequest("Invalid base64 format")
	}

	mimeType, err := mimeFromHeader(header)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.BadRequest("Invalid base64 format")
	}

	name := uuid.NewString() + extensionFor(mimeType)
	dir := filepath.Join(s.root, subfolder)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(subfolder, name string) error {
	if name == "" {
		return nil
	}
	err := s.fs.Remove(filepath.Join(s.root, subfolder, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URL returns the public address of a stored file, or nil when name is empty.
func (s *Store) URL(subfolder, name string) *string {
	if name == "" {
		return nil
	}
	u := s.publicBase + "/" + path.Join(subfolder, name)
	return &u
}

// mimeFromHeader extracts the media type from "data:<mime>;base64".
func mimeFromHeader(header string) (string, error) {
	_, rest, ok := strings.Cut(header, ":")
	if !ok {
		return "", errors.BadRequest("Invalid base64 header")
	}
	mimeType, _, _ := strings.Cut(rest, ";")
	return strings.TrimSpace(mimeType), nil
}

func extensionFor(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return defaultExtension
	}
	// ExtensionsByType sorts alphabetically; prefer the common short forms.
	for _, preferred := range []string{".jpg", ".png", ".pdf", ".txt", ".csv", ".xlsx"} {
		for _, e := range exts {
			if e == preferred {
				return e
			}
		}
	}
	return exts[0]
}
