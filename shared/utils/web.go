package utils

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/logger"
)

const (
	invalidJSONMsg   = "Body is invalid json"
	invalidFieldsMsg = "Required fields missing"
	wrongTypeMsg     = "only strings are accepted for properties"
	internalErrorMsg = "Internal server error"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode answers with the status mapped from err.
// Internal causes are logged, never sent to the client.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	code := errors.StatusCode(err)
	if code >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
		http.Error(w, internalErrorMsg, code)
		return
	}
	http.Error(w, err.Error(), code)
}

func GetIP(r *http.Request) (string, error) {
	ip := strings.TrimSpace(r.Header.Get("X-REAL-IP"))
	if net.ParseIP(ip) != nil {
		return ip, nil
	}

	for _, ip := range strings.Split(r.Header.Get("X-FORWARDED-FOR"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		logger.Log.Debug("can't split remote addr", "remote_addr", r.RemoteAddr, "error", err)
		return "", err
	}
	if net.ParseIP(ip) != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}

// DecodeValidate decodes a json body into body and runs its validate tags.
// A field of the wrong json type (an object where a string belongs, for
// instance) is a ValidationError, like any other rejected input.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("body validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: invalidFieldsMsg, StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("body decode failed", "error", err)
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			return &errors.ValidationError{Message: wrongTypeMsg}
		}
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return &errors.ErrorWithStatusCode{Message: "Body is too large", StatusCode: http.StatusRequestEntityTooLarge}
		}
		return &errors.ErrorWithStatusCode{Message: invalidJSONMsg, StatusCode: http.StatusBadRequest}
	}
	return nil
}
