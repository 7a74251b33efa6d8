package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/generate_request.schema.json
var generateRequestSchema []byte

var generateRequestLoader = gojsonschema.NewBytesLoader(generateRequestSchema)

// ValidateGenerateRequest validates a decoded JSON body against the
// generate request schema.
func ValidateGenerateRequest(body []byte) error {
	res, err := gojsonschema.Validate(generateRequestLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
