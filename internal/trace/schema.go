package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema validates one NDJSON trace line before it is accepted
// into the action catalog. External library files are untrusted input;
// the decoder would surface most problems eventually, but the schema
// rejects them with a usable message up front.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 3,
  "maxItems": 3,
  "prefixItems": [
    {"enum": ["UPDATE", "RELEASE"]},
    {"type": "number"},
    {
      "type": "object",
      "propertyNames": {"pattern": "^[0-9]+$"},
      "additionalProperties": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "x": {"type": "integer"},
          "y": {"type": "integer"},
          "pressure": {"type": "integer"},
          "orientation": {"type": "integer"},
          "touch_minor": {"type": "integer"},
          "touch_major": {"type": "integer"}
        },
        "additionalProperties": false
      }
    }
  ]
}`

var compiledRecordSchema = jsonschema.MustCompileString("trace-record.schema.json", recordSchema)

// ValidateRecordJSON checks one serialized record against the schema.
func ValidateRecordJSON(line []byte) error {
	var instance any
	if err := json.Unmarshal(line, &instance); err != nil {
		return fmt.Errorf("parse record: %w", err)
	}
	if err := compiledRecordSchema.Validate(instance); err != nil {
		return fmt.Errorf("invalid trace record: %w", err)
	}
	return nil
}

// ValidateStream checks every line of an NDJSON trace. Returns the
// first failure with its line number.
func ValidateStream(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if err := ValidateRecordJSON([]byte(text)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}
