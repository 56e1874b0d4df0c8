package api

import (
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// QR size bounds in pixels.
const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// qrHandler renders the display URL as a QR code so visitors can open the
// scoreboard on their own devices.
type qrHandler struct {
	displayURL string
}

func newQRHandler(displayURL string) *qrHandler {
	return &qrHandler{displayURL: displayURL}
}

// HandleQR handles GET /qr?size=N requests with a PNG response.
func (h *qrHandler) HandleQR(w http.ResponseWriter, r *http.Request) {
	const op = "api.qr"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		size = n
	}
	png, err := qrcode.Encode(h.displayURL, qrcode.Medium, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
