package utils

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, data interface{}) {
	WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus encodes data with the given status code.
func WriteJSONStatus(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		Logger.WithError(err).Error("failed to encode JSON response")
		WriteError(w, "failed to encode JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

type messageResponse struct {
	Message string `json:"message"`
}

func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, messageResponse{Message: message})
}
