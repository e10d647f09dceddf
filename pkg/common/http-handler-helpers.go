package common

import (
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// JsonHandler answers preflight requests and writes whatever fn returns as JSON.
// A returned error is logged, the handler is expected to have written the status.
func JsonHandler(logger *zap.Logger, fn func(w http.ResponseWriter, r *http.Request) (any, error)) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		data, err := fn(w, r)
		if err != nil {
			logger.Warn("error handling request", zap.String("path", r.URL.Path), zap.Error(err))
		}
		if data == nil {
			return
		}
		if err := WriteJson(w, data); err != nil {
			logger.Error("could not write response", zap.Error(err))
		}
	}
}

func WriteJson(w http.ResponseWriter, data any) error {
	bytes, err := sonic.Marshal(data)
	if err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	return err
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
