package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// LogError пишет ошибку в глобальный zap логгер и оборачивает ее сообщением
func LogError(message string, err error) error {
	zap.L().Error(message, zap.Error(err))
	return fmt.Errorf("%s: %w", message, err)
}

func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("не удалось записать ответ", zap.Error(err))
	}
}
