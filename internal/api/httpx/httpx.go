package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/BearBump/DriverComm/internal/models"
)

// Ответы API всегда в конверте {ok, item|items|error}.

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteItem(w http.ResponseWriter, status int, item any) {
	WriteJSON(w, status, map[string]any{"ok": true, "item": item})
}

func WriteItems(w http.ResponseWriter, items any) {
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "items": items})
}

func WriteOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// WriteError переводит ошибку сервиса в HTTP-статус:
// ErrNotFound -> 404, ValidationError -> 400, ErrConflict -> 409, прочее -> 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteErrorMessage(w, http.StatusNotFound, "Not found")
	case errors.As(err, &verr):
		WriteErrorMessage(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, models.ErrConflict):
		WriteErrorMessage(w, http.StatusConflict, "Already exists")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		WriteErrorMessage(w, http.StatusInternalServerError, "Internal error")
	}
}

// DecodeJSON: пустое тело = пустой объект.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return models.NewValidationError("invalid JSON body")
}

// ParseID разбирает числовой id из пути или query.
func ParseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("invalid " + name)
	}
	return id, nil
}
