// Package storage is the object bucket behind image uploads
package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/aethra/haven/internal/config"
	apperrors "github.com/aethra/haven/internal/errors"
)

// Object describes one stored file
type Object struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ModTime     time.Time `json:"mod_time"`
	Inline      bool      `json:"inline,omitempty"`
}

// Bucket stores named objects and serves them from a public URL
type Bucket interface {
	Put(ctx context.Context, name string, data []byte) error
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, name string) error
	PublicURL(name string) string
}

// LocalBucket keeps objects in a directory that the router serves statically
type LocalBucket struct {
	dir     string
	baseURL string
}

// NewLocalBucket creates the directory if needed
func NewLocalBucket(dir, baseURL string) (*LocalBucket, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalBucket{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory served under the public base URL
func (b *LocalBucket) Dir() string { return b.dir }

func (b *LocalBucket) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" || strings.Contains(name, "\\") {
		return "", apperrors.NewBadRequestError("invalid object name")
	}
	return filepath.Join(b.dir, filepath.FromSlash(clean)), nil
}

func (b *LocalBucket) Put(ctx context.Context, name string, data []byte) error {
	full, err := b.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	tmp := full + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, full)
}

func (b *LocalBucket) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := filepath.WalkDir(b.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".part") {
			return nil
		}
		rel, err := filepath.Rel(b.dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		ctype := ""
		if mt, err := mimetype.DetectFile(p); err == nil {
			ctype = mt.String()
		}
		out = append(out, Object{
			Name:        name,
			URL:         b.PublicURL(name),
			Size:        info.Size(),
			ContentType: ctype,
			ModTime:     info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

func (b *LocalBucket) Delete(ctx context.Context, name string) error {
	full, err := b.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError("file " + name)
		}
		return err
	}
	return nil
}

func (b *LocalBucket) PublicURL(name string) string {
	return b.baseURL + "/" + strings.TrimLeft(name, "/")
}

// =============================================================================
// UPLOADS
// =============================================================================

// SVG is left out: it can carry script and uploads are served same-origin
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// Uploader validates images and stores them in a bucket
type Uploader struct {
	bucket      Bucket
	maxBytes    int64
	allowInline bool
}

// NewUploader creates an uploader from the storage settings
func NewUploader(bucket Bucket, cfg config.StorageConfig) *Uploader {
	max := cfg.MaxUploadBytes
	if max <= 0 {
		max = 5 << 20
	}
	return &Uploader{bucket: bucket, maxBytes: max, allowInline: cfg.AllowInline}
}

// Bucket returns the underlying bucket
func (u *Uploader) Bucket() Bucket { return u.bucket }

// UploadImage stores an image under folder. The content is sniffed, never
// trusted from the client. When the bucket write fails and inline is true
// (and the server allows it) the image comes back as a data: URL instead.
func (u *Uploader) UploadImage(ctx context.Context, folder string, data []byte, inline bool) (Object, error) {
	if len(data) == 0 {
		return Object{}, apperrors.NewValidationError("file", "File is empty")
	}
	if int64(len(data)) > u.maxBytes {
		return Object{}, apperrors.NewValidationError("file", fmt.Sprintf("File is larger than %d MB", u.maxBytes>>20))
	}

	mt := mimetype.Detect(data)
	ctype := mt.String()
	if i := strings.Index(ctype, ";"); i >= 0 {
		ctype = ctype[:i]
	}
	ext, ok := imageExtensions[ctype]
	if !ok {
		return Object{}, apperrors.NewValidationError("file", "Only JPEG, PNG, GIF, WebP and AVIF images are accepted")
	}

	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "images"
	}
	name := path.Join(folder, uuid.NewString()+ext)

	if err := u.bucket.Put(ctx, name, data); err != nil {
		if inline && u.allowInline {
			log.Printf("storage: bucket write failed, returning inline image: %v", err)
			return Object{
				Name:        name,
				URL:         "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(data),
				Size:        int64(len(data)),
				ContentType: ctype,
				ModTime:     time.Now(),
				Inline:      true,
			}, nil
		}
		log.Printf("storage: failed to store %s: %v", name, err)
		return Object{}, apperrors.NewInternalError(err)
	}

	return Object{
		Name:        name,
		URL:         u.bucket.PublicURL(name),
		Size:        int64(len(data)),
		ContentType: ctype,
		ModTime:     time.Now(),
	}, nil
}
