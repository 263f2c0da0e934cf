package http

import (
	"errors"
	"net/http"

	"github.com/aviral-m/Backend-Project/internal/service"
)

// multipartMemoryLimit caps how much of a multipart body is buffered in
// memory; larger parts spill to temp files.
const multipartMemoryLimit = 32 << 20

// fileFromForm extracts a single uploaded file from a multipart form. A
// missing part returns (nil, nil) so the caller decides whether the field is
// required.
func fileFromForm(r *http.Request, field string) (*service.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	return &service.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	}, nil
}
