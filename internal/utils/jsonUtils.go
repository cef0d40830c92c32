package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJSONError writes an error response as {"error": message}.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Error().Err(err).Msg("Error encoding JSON error response")
	}
}

// RespondWithJSON writes payload as the JSON response body.
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Error encoding JSON response")
	}
}
