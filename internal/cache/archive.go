package cache

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// WriteArchive 将 paths 打包为 zstd 压缩的 tar 流。条目名为去掉开头 / 的绝对路径，
// 解包时据此还原到原位置。不存在的路径被忽略。
func WriteArchive(ctx context.Context, w io.Writer, paths []string) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	for _, root := range paths {
		if err := addTree(ctx, tw, root); err != nil {
			zw.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func addTree(ctx context.Context, tw *tar.Writer, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return err
			}
		} else if !info.Mode().IsRegular() && !info.IsDir() {
			// socket、设备文件等不进入归档
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = entryName(p)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = copyWithContext(ctx, tw, f)
		f.Close()
		return err
	})
}

// ExtractArchive 解包 WriteArchive 生成的流。root 为空时还原到绝对路径，
// 否则所有条目落在 root 之下。包含 .. 的条目会被拒绝。
func ExtractArchive(ctx context.Context, r io.Reader, root string) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()
	tr := tar.NewReader(zr)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		target, err := targetPath(root, hdr.Name)
		if err != nil {
			return err
		}
		if err := extractEntry(ctx, tr, hdr, target); err != nil {
			return err
		}
	}
}

func extractEntry(ctx context.Context, tr *tar.Reader, hdr *tar.Header, target string) error {
	mode := hdr.FileInfo().Mode()
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, mode.Perm()|0o700)
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		os.Remove(target)
		return os.Symlink(hdr.Linkname, target)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
		if err != nil {
			return err
		}
		_, copyErr := copyWithContext(ctx, f, tr)
		closeErr := f.Close()
		if copyErr != nil {
			return copyErr
		}
		if closeErr != nil {
			return closeErr
		}
		return os.Chtimes(target, hdr.ModTime, hdr.ModTime)
	default:
		return nil
	}
}

func entryName(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

func targetPath(root, name string) (string, error) {
	clean := strings.TrimSuffix(name, "/")
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return "", fmt.Errorf("archive entry %q escapes destination", name)
		}
	}
	local := filepath.FromSlash(clean)
	if root != "" {
		return filepath.Join(root, local), nil
	}
	if filepath.IsAbs(local) {
		return local, nil
	}
	return string(filepath.Separator) + local, nil
}

// copyWithContext 分块复制并在每块之间检查 ctx，便于取消大文件传输。
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
