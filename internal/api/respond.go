package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/retail-shop/internal/auth"
	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/domain/order"
	"github.com/example/retail-shop/internal/domain/product"
	"github.com/example/retail-shop/internal/logger"
	"go.uber.org/zap"
)

var errInvalidPathID = errors.New("id must be a positive integer")

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case order.IsValidation(err),
		errors.Is(err, customer.ErrInvalidEmail),
		errors.Is(err, customer.ErrInvalidName),
		errors.Is(err, customer.ErrInvalidID),
		errors.Is(err, product.ErrInvalidID),
		errors.Is(err, event.ErrInvalidCustomerID),
		errors.Is(err, event.ErrEmptyPayload),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, errInvalidPathID):
		return http.StatusBadRequest
	case errors.Is(err, customer.ErrCustomerNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, customer.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, customer.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondDomainError writes err with its mapped status. Server errors are
// logged in full and answered with a generic message.
func respondDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context(), log).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSONError(w, "server error", status)
		return
	}
	respondJSONError(w, err.Error(), status)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidPathID
	}
	return id, nil
}
