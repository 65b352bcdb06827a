package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/akozyrev/profvibe/internal/imagegen"
)

const maxImagePrompts = 10

type generateImagesRequest struct {
	Prompts []string `json:"prompts"`
}

type generateImagesResponse struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleGenerateImages(w http.ResponseWriter, r *http.Request) {
	var req generateImagesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	prompts := make([]string, 0, len(req.Prompts))
	for _, p := range req.Prompts {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if len(prompts) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_prompts", "at least one prompt is required")
		return
	}
	if len(prompts) > maxImagePrompts {
		respondError(w, http.StatusBadRequest, "invalid_prompts", "too many prompts")
		return
	}

	urls := make([]string, 0, len(prompts))
	for _, prompt := range prompts {
		url, err := s.images.GenerateImage(r.Context(), prompt)
		if err != nil {
			if errors.Is(err, imagegen.ErrUnavailable) {
				respondError(w, http.StatusServiceUnavailable, "image_backend_unavailable", err.Error())
				return
			}
			respondError(w, http.StatusBadGateway, "image_generation_failed", err.Error())
			return
		}
		s.metrics.ImagesGenerated.Inc()
		urls = append(urls, url)
	}
	respondJSON(w, http.StatusOK, generateImagesResponse{URLs: urls})
}
