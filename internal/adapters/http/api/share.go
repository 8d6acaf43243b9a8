package api

import (
	"fmt"
	"net/http"
	"sync"

	qrcode "github.com/skip2/go-qrcode"
)

// ShareHandler serves a QR code pointing players at the public game URL.
type ShareHandler struct {
	url  string
	size int

	once sync.Once
	png  []byte
	err  error
}

// NewShareHandler creates a share handler for url.
func NewShareHandler(url string, size int) *ShareHandler {
	return &ShareHandler{url: url, size: size}
}

// HandleShare handles GET /share.png. The image is rendered once.
func (h *ShareHandler) HandleShare(w http.ResponseWriter, _ *http.Request) {
	const op = "api.share"

	h.once.Do(func() {
		h.png, h.err = qrcode.Encode(h.url, qrcode.Medium, h.size)
	})
	if h.err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", opError(op, fmt.Errorf("%w: %w", ErrShare, h.err)))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.png)
}
