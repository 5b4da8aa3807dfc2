package adf

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAMLDecoder reads records that were dumped to YAML as
//
//	instances:
//	  - Field: value
type YAMLDecoder struct{}

func (YAMLDecoder) Decode(data []byte) (*Record, error) {
	var raw struct {
		Instances []map[string]interface{} `yaml:"instances"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrMalformedRecord, "yaml: %v", err)
	}
	if len(raw.Instances) == 0 {
		return nil, errors.Wrap(ErrMalformedRecord, "no instances")
	}
	r := &Record{Instances: make([]Struct, len(raw.Instances))}
	for i, inst := range raw.Instances {
		r.Instances[i] = Struct(inst)
	}
	return r, nil
}
