package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

// UploadImage uploads an image as multipart field "file"
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	var resp UploadResponse
	if err := c.send(ctx, endpoint.UserSpecific, http.MethodPost, "/upload/image", nil, &buf, writer.FormDataContentType(), &resp); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return &resp, nil
}
