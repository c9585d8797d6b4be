// Package form decodes loosely typed input (JSON bodies, urlencoded forms, shell
// key=value pairs) into typed form structs.
package form

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/frahmantamala/incubation-console/internal"
)

const maxBodyBytes = 1 << 20

// Decode copies input into out, matching keys against the `json` tags of out and
// converting strings to numbers where the target field needs it.
func Decode(input map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return internal.NewInternalError("failed to build form decoder", err)
	}
	if err := dec.Decode(input); err != nil {
		return internal.NewValidationError(fmt.Sprintf("invalid form: %v", err), internal.ErrCodeValidationFailed)
	}
	return nil
}

// FromRequest reads a JSON or urlencoded body into out.
func FromRequest(r *http.Request, out interface{}) error {
	input, err := requestValues(r)
	if err != nil {
		return err
	}
	return Decode(input, out)
}

// FromPairs decodes shell arguments of the form key=value.
func FromPairs(pairs []string, out interface{}) error {
	input := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return internal.NewValidationError(fmt.Sprintf("expected key=value, got %q", p), internal.ErrCodeValidationFailed)
		}
		input[key] = value
	}
	return Decode(input, out)
}

func requestValues(r *http.Request) (map[string]interface{}, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return nil, internal.NewValidationError("invalid form body", internal.ErrCodeValidationFailed)
		}
		input := make(map[string]interface{}, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) == 1 {
				input[k] = v[0]
			} else {
				input[k] = v
			}
		}
		return input, nil
	default:
		input := map[string]interface{}{}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, internal.NewValidationError("failed to read request body", internal.ErrCodeValidationFailed)
		}
		if len(strings.TrimSpace(string(body))) == 0 {
			return input, nil
		}
		if err := json.Unmarshal(body, &input); err != nil {
			return nil, internal.NewValidationError("invalid JSON body", internal.ErrCodeValidationFailed)
		}
		return input, nil
	}
}
