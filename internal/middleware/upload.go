package middleware

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextUploadKey = "uploaded_paths"

type UploadOptions struct {
	Dir      string
	Field    string
	MaxFiles int
	MaxBytes int64
}

// Upload 保存 multipart 中 field 字段的文件，路径按上传顺序放进 context；没有文件时直接放行
func Upload(opt UploadOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opt.MaxBytes*int64(max(opt.MaxFiles, 1))+1<<20)
		form, err := c.MultipartForm()
		if err != nil {
			pkg.Fail(c, pkg.BadRequest("invalid multipart form"))
			c.Abort()
			return
		}
		files := form.File[opt.Field]
		if len(files) > opt.MaxFiles {
			pkg.Fail(c, pkg.BadRequest("at most %d file(s) allowed in %q", opt.MaxFiles, opt.Field))
			c.Abort()
			return
		}
		if err := os.MkdirAll(opt.Dir, 0o755); err != nil {
			pkg.Fail(c, fmt.Errorf("upload dir: %w", err))
			c.Abort()
			return
		}

		for _, fh := range files {
			if fh.Size > opt.MaxBytes {
				pkg.Fail(c, pkg.BadRequest("file %q exceeds %d bytes", fh.Filename, opt.MaxBytes))
				c.Abort()
				return
			}
		}

		paths := make([]string, 0, len(files))
		for _, fh := range files {
			dst := filepath.Join(opt.Dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
			if err := c.SaveUploadedFile(fh, dst); err != nil {
				removeUploads(append(paths, dst))
				pkg.Fail(c, fmt.Errorf("save upload: %w", err))
				c.Abort()
				return
			}
			paths = append(paths, filepath.ToSlash(dst))
		}
		c.Set(ContextUploadKey, paths)
		c.Next()

		// 后续处理失败（校验、归属、存储）时不保留本次上传的文件
		if c.Writer.Status() >= http.StatusBadRequest || c.IsAborted() {
			removeUploads(paths)
		}
	}
}

func removeUploads(paths []string) {
	for _, p := range paths {
		if err := os.Remove(filepath.FromSlash(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("remove upload failed", "path", p, "error", err)
		}
	}
}

// UploadedPaths 没有上传文件时返回空切片
func UploadedPaths(c *gin.Context) []string {
	if v, ok := c.Get(ContextUploadKey); ok {
		if paths, ok := v.([]string); ok {
			return paths
		}
	}
	return []string{}
}
