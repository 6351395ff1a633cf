package main

import "github.com/santhosh-tekuri/jsonschema/v5"

// Schema contracts for every payload the API accepts. Extra properties are
// deliberately allowed on cheeses and zones; whatever passes validation is
// stored as-is.

var cheeseSchema = jsonschema.MustCompileString("cheese.json", `{
	"type": "object",
	"properties": {
		"type": {"type": "string"},
		"name": {"type": "string"},
		"producer": {"type": "string"},
		"age": {"type": "number"},
		"weight": {
			"type": "string",
			"pattern": "^[1-9][0-9]*(kg|pound|g|oz)"
		},
		"taste": {"type": "string"},
		"valid_through": {
			"type": "string",
			"pattern": "^[0-9]{4}/[0-9]{2}/[0-9]{2}"
		}
	},
	"required": ["type", "name", "valid_through", "weight"]
}`)

var zoneSchema = jsonschema.MustCompileString("zone.json", `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"temperature": {"type": "string", "pattern": "^[1-9][0-9]*c$"},
		"humidity": {"type": "string", "pattern": "[1-9][0-9]?%"},
		"light": {"type": "string", "pattern": "^(full-light|semi-darkness|darkness)"}
	},
	"required": ["temperature", "humidity", "light"]
}`)

var zoneAssignmentSchema = jsonschema.MustCompileString("zone_assignment.json", `{
	"type": "object",
	"properties": {
		"cheese_id": {"type": "string", "pattern": "^[a-f\\d]{24}$"},
		"zone_id": {"type": "string", "pattern": "^[a-f\\d]{24}$"}
	},
	"required": ["cheese_id", "zone_id"]
}`)

var zoneTransferSchema = jsonschema.MustCompileString("zone_transfer.json", `{
	"type": "object",
	"properties": {
		"cheese_id": {"type": "string", "pattern": "^[a-f\\d]{24}$"},
		"from_zone_id": {"type": "string", "pattern": "^[a-f\\d]{24}$"},
		"to_zone_id": {"type": "string", "pattern": "^[a-f\\d]{24}$"}
	},
	"required": ["cheese_id", "from_zone_id", "to_zone_id"]
}`)
