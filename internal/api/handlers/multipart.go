package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/bizsuite-hq/bizsuite/internal/domain/models"
	"github.com/bizsuite-hq/bizsuite/internal/domain/services"
)

// maxFileSizeMB resolves the upload limit from the forms settings
// section. Stored values arrive as float64 after a JSON round-trip.
func maxFileSizeMB(settings *services.SettingsService) int {
	maxMB := 10
	switch v := settings.Get("forms", "max_file_size", 10).(type) {
	case int:
		maxMB = v
	case float64:
		maxMB = int(v)
	}
	if maxMB <= 0 {
		maxMB = 10
	}
	return maxMB
}

// parseMultipartPayload reads a multipart form into a flat data map and
// a list of file uploads. Repeated values for a field come back as a
// string slice.
func parseMultipartPayload(r *http.Request, maxMB int) (map[string]any, []models.FileUpload, error) {
	maxBytes := int64(maxMB) << 20

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form")
	}

	data := make(map[string]any, len(r.MultipartForm.Value))
	for name, values := range r.MultipartForm.Value {
		if len(values) == 1 {
			data[name] = values[0]
		} else {
			data[name] = values
		}
	}

	var files []models.FileUpload
	for name, headers := range r.MultipartForm.File {
		for _, header := range headers {
			if header.Size > maxBytes {
				return nil, nil, fmt.Errorf("file %s exceeds the %dMB limit", header.Filename, maxMB)
			}
			f, err := header.Open()
			if err != nil {
				return nil, nil, fmt.Errorf("read file %s", header.Filename)
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, nil, fmt.Errorf("read file %s", header.Filename)
			}
			files = append(files, models.FileUpload{
				Field:       name,
				Filename:    filepath.Base(header.Filename),
				ContentType: header.Header.Get("Content-Type"),
				Data:        content,
			})
		}
	}

	return data, files, nil
}
