package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ModelError is the body of every error response.
type ModelError struct {
	// A human readable description of the error state
	Description string `json:"description,omitempty"`
}

// RespondJSONObjectWithCode writes obj as JSON with the given status code.
func RespondJSONObjectWithCode(w http.ResponseWriter, code int, obj interface{}) {
	var err error
	var jsonBytes []byte
	if obj != nil {
		jsonBytes, err = json.Marshal(obj)
	}
	if err != nil {
		RespondWithError(w, errors.New("unable to marshal response"), http.StatusInternalServerError)
		return
	}

	setCommonHeaders(w)
	w.WriteHeader(code)
	if jsonBytes != nil {
		_, _ = w.Write(jsonBytes)
	}
}

// RespondWithError writes err as a ModelError.
func RespondWithError(w http.ResponseWriter, err error, code int) {
	body, _ := json.Marshal(ModelError{Description: err.Error()})
	setCommonHeaders(w)
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func setCommonHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
}
