// Package actions 通过 runner 提供的缓存 API（artifactcache v1）实现 cache.Service。
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/setup-vp/internal/cache"
)

const (
	acceptHeader     = "application/json;api-version=6.0-preview.1"
	defaultChunkSize = 32 << 20
)

// ErrUnavailable 表示当前环境没有缓存服务地址或令牌。
var ErrUnavailable = errors.New("actions cache service unavailable")

// StatusError 描述缓存服务返回的非预期状态码。
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// Options 控制客户端行为，零值字段使用默认值。
type Options struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	MaxRetries     int
	InitialBackoff time.Duration
	ChunkSize      int64
	TempDir        string
	Logger         logrus.FieldLogger
}

// Client 是 cache.Service 的 HTTP 实现。
type Client struct {
	base           *url.URL
	token          string
	http           *http.Client
	maxRetries     int
	initialBackoff time.Duration
	chunkSize      int64
	tempDir        string
	logger         logrus.FieldLogger
}

// FromEnv 读取 ACTIONS_CACHE_URL 与 ACTIONS_RUNTIME_TOKEN 构造客户端。
func FromEnv(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv("ACTIONS_CACHE_URL")
	}
	if opts.Token == "" {
		opts.Token = os.Getenv("ACTIONS_RUNTIME_TOKEN")
	}
	if opts.TempDir == "" {
		opts.TempDir = os.Getenv("RUNNER_TEMP")
	}
	// 只实现了 _apis/artifactcache (v1)，runner 声明 v2 时视为不可用
	if os.Getenv("ACTIONS_CACHE_SERVICE_V2") != "" {
		return nil, fmt.Errorf("%w: runner requires cache service v2", ErrUnavailable)
	}
	return New(opts)
}

// New 校验参数并构造客户端。
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" || opts.Token == "" {
		return nil, ErrUnavailable
	}
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid cache url: %w", err)
	}
	client := &Client{
		base:           base,
		token:          opts.Token,
		http:           opts.HTTPClient,
		maxRetries:     opts.MaxRetries,
		initialBackoff: opts.InitialBackoff,
		chunkSize:      opts.ChunkSize,
		tempDir:        opts.TempDir,
		logger:         opts.Logger,
	}
	if client.http == nil {
		client.http = NewHTTPClient(0)
	}
	if client.maxRetries < 0 {
		client.maxRetries = 0
	}
	if client.initialBackoff <= 0 {
		client.initialBackoff = time.Second
	}
	if client.chunkSize <= 0 {
		client.chunkSize = defaultChunkSize
	}
	if client.logger == nil {
		client.logger = logrus.StandardLogger()
	}
	client.logger = client.logger.WithField("action", "actions_cache")
	return client, nil
}

type cacheEntry struct {
	CacheKey        string `json:"cacheKey"`
	ArchiveLocation string `json:"archiveLocation"`
}

type reserveRequest struct {
	Key       string `json:"key"`
	Version   string `json:"version"`
	CacheSize int64  `json:"cacheSize"`
}

type reserveResponse struct {
	CacheID int64 `json:"cacheId"`
}

type commitRequest struct {
	Size int64 `json:"size"`
}

func (c *Client) Restore(ctx context.Context, paths []string, primaryKey string, restoreKeys []string) (string, error) {
	keys := cache.CandidateKeys(primaryKey, restoreKeys)
	query := url.Values{}
	query.Set("keys", strings.Join(keys, ","))
	query.Set("version", cache.Version(paths))

	resp, err := c.send(ctx, "query cache", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, "_apis/artifactcache/cache?"+query.Encode(), nil)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		return "", nil
	case http.StatusOK:
	default:
		return "", statusError("query cache", resp)
	}

	var entry cacheEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return "", fmt.Errorf("decode cache entry: %w", err)
	}
	if entry.ArchiveLocation == "" {
		return "", nil
	}

	archive, err := c.download(ctx, entry.ArchiveLocation)
	if err != nil {
		return "", err
	}
	defer removeTemp(archive)

	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if err := cache.ExtractArchive(ctx, archive, ""); err != nil {
		return "", fmt.Errorf("extract %s: %w", entry.CacheKey, err)
	}
	return entry.CacheKey, nil
}

func (c *Client) Save(ctx context.Context, paths []string, key string) (cache.SaveResult, error) {
	existing := cache.ExistingPaths(paths)
	if len(existing) == 0 {
		return cache.SaveResult{}, cache.ErrSaveSkipped
	}

	archive, err := os.CreateTemp(c.tempDir, "setup-vp-*"+cache.ArchiveExt)
	if err != nil {
		return cache.SaveResult{}, err
	}
	defer removeTemp(archive)

	if err := cache.WriteArchive(ctx, archive, existing); err != nil {
		return cache.SaveResult{}, fmt.Errorf("create archive: %w", err)
	}
	info, err := archive.Stat()
	if err != nil {
		return cache.SaveResult{}, err
	}
	size := info.Size()

	cacheID, err := c.reserve(ctx, reserveRequest{Key: key, Version: cache.Version(paths), CacheSize: size})
	if err != nil {
		return cache.SaveResult{}, err
	}
	if err := c.upload(ctx, cacheID, archive, size); err != nil {
		return cache.SaveResult{}, err
	}
	if err := c.commit(ctx, cacheID, size); err != nil {
		return cache.SaveResult{}, err
	}
	return cache.SaveResult{CacheID: cacheID, ArchiveSize: size}, nil
}

func (c *Client) reserve(ctx context.Context, body reserveRequest) (int64, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := c.send(ctx, "reserve cache", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, "_apis/artifactcache/caches", bytes.NewReader(payload))
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return 0, fmt.Errorf("%w: %s", cache.ErrCacheExists, body.Key)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError("reserve cache", resp)
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return 0, fmt.Errorf("%w: %s", cache.ErrCacheExists, body.Key)
		}
		return 0, err
	}

	var out reserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode reserve response: %w", err)
	}
	if out.CacheID == 0 {
		return 0, fmt.Errorf("%w: %s", cache.ErrCacheExists, body.Key)
	}
	return out.CacheID, nil
}

func (c *Client) upload(ctx context.Context, cacheID int64, archive io.ReaderAt, size int64) error {
	ref := fmt.Sprintf("_apis/artifactcache/caches/%d", cacheID)
	for start := int64(0); start < size; start += c.chunkSize {
		end := start + c.chunkSize - 1
		if end >= size {
			end = size - 1
		}
		length := end - start + 1
		contentRange := fmt.Sprintf("bytes %d-%d/*", start, end)

		resp, err := c.send(ctx, "upload chunk", func() (*http.Request, error) {
			req, err := c.newRequest(ctx, http.MethodPatch, ref, io.NewSectionReader(archive, start, length))
			if err != nil {
				return nil, err
			}
			req.ContentLength = length
			req.Header.Set("Content-Type", "application/octet-stream")
			req.Header.Set("Content-Range", contentRange)
			return req, nil
		})
		if err != nil {
			return err
		}
		err = expectSuccess("upload chunk", resp)
		if err != nil {
			return err
		}
		c.logger.WithField("range", contentRange).Debug("uploaded cache chunk")
	}
	return nil
}

func (c *Client) commit(ctx context.Context, cacheID int64, size int64) error {
	payload, err := json.Marshal(commitRequest{Size: size})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, "commit cache", func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, fmt.Sprintf("_apis/artifactcache/caches/%d", cacheID), bytes.NewReader(payload))
	})
	if err != nil {
		return err
	}
	return expectSuccess("commit cache", resp)
}

// download 将归档写入临时文件，调用方负责删除。
func (c *Client) download(ctx context.Context, location string) (*os.File, error) {
	resp, err := c.send(ctx, "download cache", func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("download cache", resp)
	}

	f, err := os.CreateTemp(c.tempDir, "setup-vp-restore-*"+cache.ArchiveExt)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		removeTemp(f)
		return nil, fmt.Errorf("download cache: %w", err)
	}
	return f, nil
}

// send 执行请求，网络错误、429 与 5xx 按指数退避重试；其余状态交给调用方判断。
func (c *Client) send(ctx context.Context, op string, build func() (*http.Request, error)) (*http.Response, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff

	attempt := 0
	return backoff.Retry(ctx, func() (*http.Response, error) {
		attempt++
		req, err := build()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.logRetry(op, attempt, err)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if retryable(resp.StatusCode) {
			err := statusError(op, resp)
			resp.Body.Close()
			c.logRetry(op, attempt, err)
			return nil, err
		}
		return resp, nil
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(c.maxRetries+1)))
}

func (c *Client) logRetry(op string, attempt int, err error) {
	c.logger.WithFields(logrus.Fields{"op": op, "attempt": attempt}).Debugf("cache request failed: %v", err)
}

func (c *Client) newRequest(ctx context.Context, method, ref string, body io.Reader) (*http.Request, error) {
	target, err := c.base.Parse(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil && method != http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func expectSuccess(op string, resp *http.Response) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func removeTemp(f *os.File) {
	name := f.Name()
	f.Close()
	os.Remove(name)
}
