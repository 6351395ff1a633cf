package main

// Document is a stored record. Cheeses and zones are free-form documents:
// updates replace the whole document, and fields beyond the schema's
// properties pass through untouched.
type Document map[string]interface{}

// Reserved document fields managed by the services, never by callers.
const (
	fieldID      = "_id"
	fieldVersion = "version"
)

// stringField returns the named field if it is a string, else "".
func (d Document) stringField(name string) string {
	s, _ := d[name].(string)
	return s
}

// clone returns a copy of the document one level deep. Nested values are
// shared; callers that store documents must not mutate nested values after
// handing them over.
func (d Document) clone() Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Binding is the current association between a cheese and a zone. Bindings
// are stored as documents; this struct is the typed view used when creating
// them.
type Binding struct {
	CheeseID string `json:"cheese_id"`
	ZoneID   string `json:"zone_id"`
}

// document converts the binding to its stored form.
func (b Binding) document() Document {
	return Document{"cheese_id": b.CheeseID, "zone_id": b.ZoneID}
}
