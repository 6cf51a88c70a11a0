package workload

import (
	"github.com/invopop/jsonschema"
)

// ScenarioSchema returns the JSON Schema of a scenario file. YAML scenario
// files are validated against the same field names.
func ScenarioSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Scenario{})
	schema.Title = "ASU scenario"
	schema.Description = "Bed capacity, per-class arrival and treatment distributions (days) and the root random number set."
	return schema
}
