// Package hashfiles 实现与 runner hashFiles() 相同的内容摘要算法：
// 每个匹配文件先做 SHA-256，再把原始摘要依次写入外层 SHA-256。
package hashfiles

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Hash 计算 root 下匹配 patterns 的所有普通文件的摘要。
// 以 ! 开头的模式表示排除；没有文件匹配时返回空字符串。
func Hash(root string, patterns ...string) (string, error) {
	files, err := Match(root, patterns...)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}

	outer := sha256.New()
	for _, file := range files {
		sum, err := fileDigest(file)
		if err != nil {
			return "", err
		}
		outer.Write(sum)
	}
	return hex.EncodeToString(outer.Sum(nil)), nil
}

// Match 返回排序去重后的匹配文件绝对路径。
func Match(root string, patterns ...string) ([]string, error) {
	include := make(map[string]struct{})
	var exclude []string

	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if strings.HasPrefix(pattern, "!") {
			exclude = append(exclude, pattern[1:])
			continue
		}
		matches, err := glob(root, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			include[m] = struct{}{}
		}
	}

	files := make([]string, 0, len(include))
	for file := range include {
		excluded, err := isExcluded(root, file, exclude)
		if err != nil {
			return nil, err
		}
		if excluded {
			continue
		}
		info, err := os.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

func glob(root, pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		return matches, nil
	}

	rel := path.Clean(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	for i, m := range matches {
		matches[i] = filepath.Join(root, filepath.FromSlash(m))
	}
	return matches, nil
}

func isExcluded(root, file string, exclude []string) (bool, error) {
	for _, pattern := range exclude {
		target := filepath.ToSlash(file)
		if !filepath.IsAbs(pattern) {
			rel, err := filepath.Rel(root, file)
			if err != nil {
				continue
			}
			target = filepath.ToSlash(rel)
			pattern = path.Clean(filepath.ToSlash(pattern))
		} else {
			pattern = filepath.ToSlash(pattern)
		}
		ok, err := doublestar.Match(pattern, target)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func fileDigest(file string) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", file, err)
	}
	return h.Sum(nil), nil
}

// FileHasher 以固定根目录计算单个文件的摘要。
type FileHasher struct {
	Root string
}

// HashFile 返回 filePath 的 hashFiles 摘要。路径按字面处理，不做 glob 展开，
// 结果与单文件匹配时的 Hash 相同。
func (h FileHasher) HashFile(filePath string) (string, error) {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(h.Root, filePath)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", nil
	}

	sum, err := fileDigest(filePath)
	if err != nil {
		return "", err
	}
	outer := sha256.Sum256(sum)
	return hex.EncodeToString(outer[:]), nil
}
