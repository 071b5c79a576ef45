package webhook

import (
	"errors"
	"net/http"

	"github.com/licensechain/licensechain-go/internal/httputil"
	"github.com/licensechain/licensechain-go/pkg/licensechain"
)

// MaxBodyBytes limits the size of a delivery accepted by Handler.
const MaxBodyBytes = 256 * 1024

// Handler returns an http.Handler that accepts POSTed deliveries.
// Responses: 200 "ok", 400 for malformed or stale deliveries, 401 for a bad
// signature, 405 for other methods, 413 for oversized bodies and 500 when a
// handler or the replay guard fails.
func (v *Verifier) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		body, err := httputil.ReadBodyStrict(w, r, MaxBodyBytes)
		if err != nil {
			v.metrics.RecordWebhookError("validation")
			status := http.StatusBadRequest
			if errors.Is(err, httputil.ErrPayloadTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		if err := v.ProcessPayload(r.Context(), body); err != nil {
			status := StatusCode(err)
			http.Error(w, http.StatusText(status), status)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// StatusCode maps an error from ProcessEvent or ProcessPayload to the HTTP
// status a receiver should answer with. A nil error maps to 200. Handler
// failures map to 500 even when they wrap a licensechain.Error, so the
// sender retries.
func StatusCode(err error) int {
	var herr *handlerError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &herr):
		return http.StatusInternalServerError
	case errors.Is(err, licensechain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, licensechain.ErrAuthentication):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
