package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadTimeout = 60 * time.Second

// ImageUploader stores event thumbnails on Cloudinary.
type ImageUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewImageUploader(cloudName, apiKey, apiSecret, folder string) (*ImageUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	if folder == "" {
		folder = "events"
	}
	return &ImageUploader{cld: cld, folder: folder}, nil
}

// Upload sends the image to the configured folder and returns its HTTPS URL.
func (u *ImageUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   u.folder,
		PublicID: publicIDFromFilename(filename),
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// publicIDFromFilename derives a URL-safe public id from the file name with a
// timestamp suffix. An empty result lets Cloudinary generate the id.
func publicIDFromFilename(filename string) string {
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	stem = strings.Trim(b.String(), "-")
	if stem == "" {
		return ""
	}
	return fmt.Sprintf("%s-%d", stem, time.Now().UnixNano())
}
