package llm

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemas holds compiled schemas keyed by Schema.Name.
var schemas = &schemaSet{compiled: map[string]*jsonschema.Schema{}}

type schemaSet struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func (s *schemaSet) get(schema *Schema) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.compiled[schema.Name]; ok {
		return c, nil
	}

	// The compiler wants plain decoded JSON, not Go maps of typed slices.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, goerr.Wrap(err, "encode schema", goerr.V("schema", schema.Name))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "decode schema", goerr.V("schema", schema.Name))
	}

	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, goerr.Wrap(err, "add schema", goerr.V("schema", schema.Name))
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, goerr.Wrap(err, "compile schema", goerr.V("schema", schema.Name))
	}
	s.compiled[schema.Name] = compiled
	return compiled, nil
}

// conform checks raw against schema. Failures carry TagBadOutput so the
// retry layer asks again once.
func conform(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	compiled, err := schemas.get(schema)
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return goerr.Wrap(err, "reply is not JSON",
			goerr.T(TagBadOutput), goerr.V("content", string(raw)))
	}
	if err := compiled.Validate(doc); err != nil {
		return goerr.Wrap(err, "reply does not match schema",
			goerr.T(TagBadOutput), goerr.V("schema", schema.Name), goerr.V("content", string(raw)))
	}
	return nil
}
