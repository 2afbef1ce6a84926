// Package sysfs provides typed access to kernel virtual-filesystem nodes.
// A missing node is reported as feature_unavailable, a denied write as
// permission_denied, so callers can tell unsupported hardware apart from
// insufficient privileges.
package sysfs

import (
	"os"
	"strconv"
	"strings"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"github.com/spf13/afero"
)

const nodeFilePerm = 0o644

// FS reads and writes sysfs/procfs nodes through an afero filesystem
// so tests can run against an in-memory tree.
type FS struct {
	fs afero.Afero
}

func New() *FS {
	return &FS{fs: afero.Afero{Fs: afero.NewOsFs()}}
}

// NewFromFs builds an FS over an arbitrary afero filesystem
func NewFromFs(base afero.Fs) *FS {
	return &FS{fs: afero.Afero{Fs: base}}
}

// Exists reports whether a node is present
func (f *FS) Exists(path string) bool {
	ok, err := f.fs.Exists(path)

	return err == nil && ok
}

// ReadString reads a node and trims surrounding whitespace
func (f *FS) ReadString(path string) (string, error) {
	content, err := f.fs.ReadFile(path)
	if err != nil {
		return "", classifyAccess(err)
	}

	return strings.TrimSpace(string(content)), nil
}

// ReadInt reads a node containing a single decimal integer
func (f *FS) ReadInt(path string) (int, error) {
	errFactory := errors.New()

	content, err := f.ReadString(path)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(content)
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrParseFailure, err).WithMessage("unexpected content in " + path)
	}

	return value, nil
}

// WriteString writes a value to a node
func (f *FS) WriteString(path, value string) error {
	if err := f.fs.WriteFile(path, []byte(value), nodeFilePerm); err != nil {
		return classifyAccess(err)
	}

	return nil
}

// WriteInt writes a decimal integer to a node
func (f *FS) WriteInt(path string, value int) error {
	return f.WriteString(path, strconv.Itoa(value))
}

// ReadDir lists the entries of a directory
func (f *FS) ReadDir(path string) ([]os.FileInfo, error) {
	entries, err := f.fs.ReadDir(path)
	if err != nil {
		return nil, classifyAccess(err)
	}

	return entries, nil
}

func classifyAccess(err error) error {
	errFactory := errors.New()

	switch {
	case os.IsNotExist(err):
		return errFactory.Wrap(errors.ErrUnavailable, err)
	case os.IsPermission(err):
		return errFactory.Wrap(errors.ErrPermissionDenied, err)
	default:
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}
}

// IsUnavailable reports whether err stems from a missing node
func IsUnavailable(err error) bool {
	return errors.HasCode(err, errors.ErrUnavailable)
}

// IsPermissionDenied reports whether err stems from a privilege problem
func IsPermissionDenied(err error) bool {
	return errors.HasCode(err, errors.ErrPermissionDenied)
}
