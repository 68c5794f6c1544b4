package builder

import (
	"io"
	"path"

	"github.com/spf13/afero"

	"github.com/hf-eolus/geocatalog/pkg/constants"
	"github.com/hf-eolus/geocatalog/pkg/errors"
)

// copyFile copies one file across filesystems, creating the destination
// directory as needed.
func copyFile(srcFS afero.Fs, srcPath string, dstFS afero.Fs, dstPath string) error {
	src, err := srcFS.Open(srcPath)
	if err != nil {
		return errors.WrapIO("open", srcPath, err)
	}
	defer func() { _ = src.Close() }()

	if err := dstFS.MkdirAll(path.Dir(dstPath), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", path.Dir(dstPath), err)
	}
	dst, err := dstFS.Create(dstPath)
	if err != nil {
		return errors.WrapIO("create", dstPath, err)
	}
	defer func() { _ = dst.Close() }()

	buf := make([]byte, constants.CopyBufferSize)
	if _, err := io.CopyBuffer(dst, src, buf); err != nil {
		return errors.WrapIO("copy", dstPath, err)
	}
	return nil
}

// fileExists reports whether path is an existing regular file.
func fileExists(fsys afero.Fs, p string) bool {
	info, err := fsys.Stat(p)
	return err == nil && !info.IsDir()
}
