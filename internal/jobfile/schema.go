package jobfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/job.schema.json
var jobSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("job.schema.json", bytes.NewReader(jobSchema)); err != nil {
			compileErr = fmt.Errorf("failed to load job schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("job.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile job schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks a decoded file against the job schema.
func Validate(f *File) error {
	s, err := schema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode job file for validation: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode job file for validation: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("job file does not match schema: %w", err)
	}
	return nil
}
