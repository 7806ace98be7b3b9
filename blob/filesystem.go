package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Filesystem implements Store on a local directory. Asset filenames are flat
// (no subdirectories), so keys map straight to files under the root.
type Filesystem struct {
	root    string
	baseURL string
}

// NewFilesystem returns a filesystem blob store rooted at path, creating it
// if needed. baseURL is prepended to names when building public URLs.
func NewFilesystem(root, baseURL string) (*Filesystem, error) {
	if root == "" {
		root = "./blobdata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (f *Filesystem) Driver() Driver { return DriverFilesystem }

// sanitizeName rejects anything that could escape the root.
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty blob name")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return name, nil
}

func (f *Filesystem) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	// Write to a temp file then rename so readers never see partial content.
	tmp, err := os.CreateTemp(f.root, ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.root, clean)); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return f.baseURL + "/" + clean, nil
}

func (f *Filesystem) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(f.root, clean))
}

func (f *Filesystem) Delete(ctx context.Context, name string) (bool, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return false, err
	}
	err = os.Remove(filepath.Join(f.root, clean))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *Filesystem) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".upload-") {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
