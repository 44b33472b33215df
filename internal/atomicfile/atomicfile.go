//go:build !windows

// Package atomicfile 以“临时文件 + rename”的方式写入文件，读者不会看到半写状态。
package atomicfile

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFile 原子地写入完整内容。
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}

// WriteFrom 将 r 的内容原子地写入 path，返回写入字节数。
func WriteFrom(path string, r io.Reader, perm os.FileMode) (int64, error) {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(perm))
	if err != nil {
		return 0, err
	}
	defer pf.Cleanup()

	n, err := io.Copy(pf, r)
	if err != nil {
		return n, err
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return n, err
	}
	return n, nil
}
