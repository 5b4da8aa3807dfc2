// Package translate maps string ids to localized text.
package translate

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Table map[string]string

// Decode reads an id to text mapping dumped as YAML.
func Decode(data []byte) (Table, error) {
	t := make(Table)
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(err, "decode translation table")
	}
	return t, nil
}

func (t Table) Get(id string) (string, bool) {
	s, ok := t[id]
	return s, ok
}

// Lookup returns the text for id, or id itself when the table lacks it.
func (t Table) Lookup(id string) string {
	if s, ok := t[id]; ok {
		return s
	}
	return id
}
