// Package pagedata extracts the data payload embedded in results-page
// HTML. The payload sits between a fixed assignment prefix and a fixed
// statement terminator. Decoding is layered: strict JSON first, then a
// JavaScript evaluation fallback for blobs that are valid JS object
// literals but not strict JSON (single quotes, unquoted keys).
package pagedata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/logger"
)

const (
	markerPrefix = "var ytInitialData = "
	markerSuffix = ";</script>"
)

// Extract locates the embedded payload in html and decodes it into a
// JSON tree. A missing marker, a missing terminator, or a blob that
// neither decoder accepts is errs.ErrParse.
func Extract(html string) (map[string]any, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("%w: empty page", errs.ErrParse)
	}

	_, rest, found := strings.Cut(html, markerPrefix)
	if !found {
		return nil, fmt.Errorf("%w: payload marker not found", errs.ErrParse)
	}
	blob, _, found := strings.Cut(rest, markerSuffix)
	if !found {
		return nil, fmt.Errorf("%w: payload terminator not found", errs.ErrParse)
	}

	data, jsonErr := decodeStrict(blob)
	if jsonErr == nil {
		return data, nil
	}

	data, evalErr := decodeLoose(blob)
	if evalErr != nil {
		return nil, fmt.Errorf("%w: payload decode: %v (eval fallback: %v)", errs.ErrParse, jsonErr, evalErr)
	}
	logger.L(logger.ComponentPageData).Debug("strict decode failed, recovered via JS eval",
		zap.NamedError("json_error", jsonErr))
	return data, nil
}

func decodeStrict(blob string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// decodeLoose evaluates the blob as a JS expression and round-trips it
// through JSON.stringify so numbers and nesting come back in the same
// shapes encoding/json produces.
func decodeLoose(blob string) (map[string]any, error) {
	vm := goja.New()
	v, err := vm.RunString("JSON.stringify((" + blob + "))")
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(v.String()), &data); err != nil {
		return nil, err
	}
	return data, nil
}
