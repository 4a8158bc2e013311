package handlers

import (
	"net/http"
	"time"
)

type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func StatusGetHandler(r *http.Request) (StatusResponse, error) {
	return StatusResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
