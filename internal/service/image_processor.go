package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/travelmandu/trm-backend/internal/media"
	"github.com/travelmandu/trm-backend/internal/repository/ports"
)

// ImageUpload is a single multipart file destined for object storage.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

func prepareImageForUpload(ctx context.Context, processor media.Processor, upload media.Upload, maxDimension int) (io.Reader, int64, string, error) {
	if processor == nil {
		return upload.Reader, upload.Size, upload.ContentType, nil
	}
	result, err := processor.Process(ctx, upload, maxDimension)
	if err != nil {
		return nil, 0, "", err
	}
	return bytes.NewReader(result.Bytes), int64(len(result.Bytes)), result.ContentType, nil
}

func safeImageExtension(contentType, fileName string) string {
	ext := extensionFromContentType(strings.ToLower(strings.TrimSpace(contentType)))
	if ext != "" {
		return ext
	}
	if fileName != "" {
		if nameExt := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName))); nameExt != "" {
			return nameExt
		}
	}
	return ".bin"
}

// uploadImage pushes one processed image into the bucket and returns its URL.
func uploadImage(ctx context.Context, storage ports.ObjectStorage, processor media.Processor, bucket, objectKey string, upload ImageUpload, maxDimension int) (string, error) {
	reader, size, contentType, err := prepareImageForUpload(ctx, processor, media.Upload{
		Reader:      upload.Reader,
		Size:        upload.Size,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
	}, maxDimension)
	if err != nil {
		return "", err
	}
	url, err := storage.Upload(ctx, bucket, objectKey, contentType, reader, size)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return url, nil
}
