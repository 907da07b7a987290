package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"todoTracker/internal/service"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return sonic.ConfigStd.NewDecoder(r.Body).Decode(dst)
}

func parseID(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return 0, service.NewValidationError("id", fmt.Sprintf("некорректный id %q", idParam))
	}
	return id, nil
}
