// Package schema validates lifecycle events before they are published.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks that an event carries the fields every consumer relies on.
// Structural validation only; a JSON Schema registry can replace this later.
func (v *Validator) Validate(event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event not serializable: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("event is not a JSON object: %w", err)
	}

	for _, required := range []string{"eventType", "sessionId"} {
		s, ok := fields[required].(string)
		if !ok || s == "" {
			return fmt.Errorf("event missing required field %q", required)
		}
	}

	log.Debug().RawJSON("event", payload).Msg("schema validated")
	return nil
}
