package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phillip/helping-hands-go/models"
)

const maxThumbnailBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ---------------- UPLOAD ----------------
func UploadThumbnail(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Uploader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Image uploads are not configured",
				"code":  "UPLOADS_DISABLED",
			})
			return
		}

		fileHeader, err := c.FormFile("file") // key must be "file"
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
				return
			}
			respondError(c, d, models.NewValidationError("an image file is required", "file"))
			return
		}
		if fileHeader.Size > maxThumbnailBytes {
			respondError(c, d, models.NewValidationError("image must be 5MB or smaller", "file"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
			return
		}
		defer file.Close()

		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType := http.DetectContentType(sniff[:n])
		if !allowedImageTypes[strings.Split(contentType, ";")[0]] {
			respondError(c, d, models.NewValidationError("file must be a JPEG, PNG, WebP or GIF image", "file"))
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}

		url, err := d.Uploader.Upload(c.Request.Context(), file, fileHeader.Filename)
		if err != nil {
			d.logger().ErrorContext(c.Request.Context(), "image upload failed",
				slog.String("file", fileHeader.Filename),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "image upload failed",
				"file":  fileHeader.Filename,
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
