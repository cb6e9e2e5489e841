package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/xeptore/panpup/unit"
)

const MaxRequestBodySize = 1 * unit.Mebibyte

var ErrEmptyBody = errors.New("empty request body")

// DecodeRequestBody decodes a JSON body of at most MaxRequestBodySize bytes
// into v. A missing body, or a literal null, yields ErrEmptyBody.
func DecodeRequestBody(w http.ResponseWriter, r *http.Request, v any) error {
	if nil == r.Body || r.Body == http.NoBody {
		return ErrEmptyBody
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if nil != err {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxBytesErr.Limit)
		}

		return fmt.Errorf("failed to read request body: %v", err)
	}

	if len(body) == 0 || string(body) == "null" {
		return ErrEmptyBody
	}

	if err := json.Unmarshal(body, v); nil != err {
		return fmt.Errorf("failed to decode request body: %v", err)
	}

	return nil
}
