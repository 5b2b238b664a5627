package handlers

import (
	"net/http"

	"moneymigo/pkg/utils"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "Server is running"})
}
