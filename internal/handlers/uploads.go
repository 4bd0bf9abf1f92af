package handlers

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errBadUpload = errors.New("invalid upload")

var (
	imageExts  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true}
	resumeExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".txt": true}
)

// Uploads saves multipart files under Dir and hands back their public URL.
type Uploads struct {
	Dir string
}

// Save stores the file posted as field into Dir/sub and returns
// "/uploads/<sub>/<name>". A request without that file yields nil.
func (u Uploads) Save(c *fiber.Ctx, field, sub string, allowed map[string]bool) (*string, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	file, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowed[ext] {
		return nil, fmt.Errorf("%w: %s must be one of %s", errBadUpload, field, extList(allowed))
	}

	dir := filepath.Join(u.Dir, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	url := path.Join("/uploads", sub, filename)
	return &url, nil
}

func extList(allowed map[string]bool) string {
	out := make([]string, 0, len(allowed))
	for ext := range allowed {
		out = append(out, ext)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
