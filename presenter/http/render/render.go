package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pelagos-finance/defi-indexer/logging"
)

func JSON(w http.ResponseWriter, r *http.Request, status int, res interface{}) {
	enc := json.NewEncoder(w)

	if pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty")); pretty {
		enc.SetIndent("", "  ")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := enc.Encode(res); err != nil {
		logger := logging.LoggerFromContext(r.Context())
		logger.WithError(err).Error("failed to marshal JSON result")
	}
}

func Error(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.LoggerFromContext(r.Context())
	logger.WithError(err).Error("request handling failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, r, http.StatusNotFound, fmt.Sprintf("%s not found", msg))
}
