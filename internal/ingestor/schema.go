package ingestor

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// feedSchema validates a source payload before any field is trusted.
// Numbers may arrive as JSON numbers or numeric strings; prices are
// re-parsed as decimals after validation.
const feedSchema = `{
  "type": "object",
  "required": ["opportunities"],
  "properties": {
    "opportunities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["asset_name", "pair", "entry_price", "exit_price"],
        "properties": {
          "asset_name": {"type": "string"},
          "pair": {"type": "string"},
          "entry_price": {"type": ["number", "string"]},
          "exit_price": {"type": ["number", "string"]},
          "strategy_name": {"type": "string"}
        }
      }
    }
  }
}`

func compileFeedSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("feed.json", strings.NewReader(feedSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("feed.json")
}
