package api

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/go-resty/resty/v2"
)

// ProxyHandler streams remote images through the API so the browser never
// hits cross-origin image hosts directly. Failures here must not affect any
// other in-flight operation, so the fetch runs on its own client with a
// bounded timeout.
type ProxyHandler struct {
	client *resty.Client
}

func NewProxyHandler(timeout time.Duration) *ProxyHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetDoNotParseResponse(true)
	return &ProxyHandler{client: client}
}

func (h *ProxyHandler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "Image URL is required", http.StatusBadRequest)
		return
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}

	resp, err := h.client.R().SetContext(r.Context()).Get(decoded)
	if err != nil {
		logger.Error("proxy image", slog.String("url", decoded), slog.Any("err", err))
		http.Error(w, "Failed to fetch image", http.StatusInternalServerError)
		return
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		http.Error(w, "Failed to fetch image", http.StatusInternalServerError)
		return
	}

	if ct := resp.Header().Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, body); err != nil {
		logger.Error("stream image", slog.Any("err", err))
	}
}
