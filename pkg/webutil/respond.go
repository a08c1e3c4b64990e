package webutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pkgship/pkgship/pkg/logutil"
)

// RespondJSON sets the proper content type and sends the given data as JSON to
// the client.
func RespondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")

	err := enc.Encode(data)
	if err != nil {
		slog.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// RespondError sends an error ID to the client and logs the error, if it is
// not nil. It returns true, if the error was not nil. This makes it possible
// to do condensed error checking:
//
//	err := DoSomething()
//	if webutil.RespondError(w, r, err) {
//	    return
//	}
func RespondError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}

	id := logutil.NewID()

	logutil.Get(r.Context()).Info("failed to handle request",
		"error", err.Error(),
		"error-id", id)

	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "ERROR: %s", id)
	return true
}
