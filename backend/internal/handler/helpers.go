package handler

import (
	"net/http"
	"strconv"

	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
	"github.com/itchan-dev/anonboard/shared/utils"
)

const maxBodyBytes = 64 << 10

// decodeBody reads a size-limited json body into T and validates it.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var body T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := utils.DecodeValidate(r.Body, &body)
	return body, err
}

// parseLimit reads a positive integer query parameter. Missing means def,
// values above max are clamped.
func parseLimit(r *http.Request, name string, def, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &errors.ValidationError{Message: "Invalid " + name + ": must be a positive integer"}
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

// fail writes err and counts the operation by its outcome.
func fail(w http.ResponseWriter, operation string, err error) {
	outcome := metrics.OutcomeError
	if errors.StatusCode(err) < http.StatusInternalServerError {
		outcome = metrics.OutcomeInvalid
	}
	metrics.RecordOperation(operation, outcome)
	utils.WriteErrorAndStatusCode(w, err)
}

func notFound(w http.ResponseWriter, operation, message string) {
	metrics.RecordOperation(operation, metrics.OutcomeNotFound)
	http.Error(w, message, http.StatusNotFound)
}
