package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"studytime-backend/internal/models"
	"studytime-backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleServiceError translates the service error taxonomy into the API
// envelope. Anything untyped is a store failure: logged and reported as a
// generic internal error, never retried here.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *service.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *service.AlreadyActiveError:
		writeJSON(w, http.StatusConflict, errorResp("ALREADY_ACTIVE", "A study session is already in progress. Stop it first or start with force.", r))
	case *service.NoActiveSessionError:
		writeJSON(w, http.StatusConflict, errorResp("NO_ACTIVE_SESSION", "No study session is currently in progress.", r))
	case *service.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found or not editable.", r))
	case *service.FutureDateError:
		writeJSON(w, http.StatusBadRequest, errorResp("FUTURE_DATE", "The date must not be in the future.", r))
	default:
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Something went wrong. Please try again later.", r))
	}
}
