package productcontroller

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecoisla/market/cart"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Uploads stores product photos in a directory served at /uploads.
type Uploads struct {
	Dir string
}

// Save writes file under a unique name and returns its public URL.
func (u Uploads) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(u.Dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create upload folder")
	}

	ext := filepath.Ext(file.Filename)
	base := strings.TrimSuffix(filepath.Base(file.Filename), ext)
	base = strings.ReplaceAll(base, " ", "_")
	filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)

	if err := c.SaveUploadedFile(file, filepath.Join(u.Dir, filename)); err != nil {
		return "", errors.Wrap(err, "save image")
	}
	return "/uploads/" + filename, nil
}

// parseUnit accepts the current and legacy unit names. An empty unit is the
// default one.
func parseUnit(s string) (string, bool) {
	u, ok := cart.ParseUnit(strings.TrimSpace(s))
	return string(u), ok
}
