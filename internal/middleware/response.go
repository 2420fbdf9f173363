package middleware

import (
	"net/http"

	"github.com/Simi129/pinterest-backend/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
