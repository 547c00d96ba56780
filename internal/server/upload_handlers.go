package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const maxUploadSize = 10 << 20

// UploadResponse describes a stored image
type UploadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// @Summary Upload an image
// @Description Stores the multipart "file" field and returns where it is served
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/upload/image [post]
func (s *Server) uploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to store empty file"})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	filename := ulid.Make().String() + strings.ToLower(filepath.Ext(header.Filename))

	dst, err := s.uploads.Create(filename)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = s.uploads.Remove(filename)
		s.logger.Error().Err(err).Msg("Failed to write upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}
	if err := dst.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to close upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	s.logger.Info().Str("filename", filename).Int64("size", header.Size).Msg("Image uploaded")

	c.JSON(http.StatusOK, UploadResponse{
		Filename: filename,
		URL:      "/uploads/" + filename,
	})
}
