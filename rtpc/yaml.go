package rtpc

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/RyMaxim/deca/utils"
)

// YAMLDecoder reads scene trees dumped as
//
//	props:
//	  _class: CRegion
//	  "0x6ca6d4b9": [1, 0, 0, 0, ...]
//	children:
//	  - props: ...
//
// Property keys are either names, hashed with lookup3, or 0x prefixed hashes.
// Integers become uint64, number lists become []float32.
type YAMLDecoder struct{}

type yamlNode struct {
	Props    map[string]interface{} `yaml:"props"`
	Children []*yamlNode            `yaml:"children"`
}

func (YAMLDecoder) Decode(data []byte) (*Node, error) {
	var raw yamlNode
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrMalformedRecord, "yaml: %v", err)
	}
	return convertNode(&raw)
}

func convertNode(raw *yamlNode) (*Node, error) {
	n := &Node{Props: make(map[uint32]Property, len(raw.Props))}
	for key, value := range raw.Props {
		h, err := propertyHash(key)
		if err != nil {
			return nil, err
		}
		p, err := convertProperty(value)
		if err != nil {
			return nil, errors.Wrapf(err, "property %q", key)
		}
		n.Props[h] = p
	}
	for _, c := range raw.Children {
		if c == nil {
			continue
		}
		child, err := convertNode(c)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func propertyHash(key string) (uint32, error) {
	if strings.HasPrefix(key, "0x") {
		h, err := strconv.ParseUint(key[2:], 16, 32)
		if err != nil {
			return 0, errors.Wrapf(ErrMalformedRecord, "property hash %q: %v", key, err)
		}
		return uint32(h), nil
	}
	return utils.HashString(key), nil
}

func convertProperty(v interface{}) (Property, error) {
	switch t := v.(type) {
	case string:
		return Property{Data: t}, nil
	case int:
		if t < 0 {
			return Property{}, errors.Wrapf(ErrMalformedRecord, "negative integer %d", t)
		}
		return Property{Data: uint64(t)}, nil
	case uint64:
		return Property{Data: t}, nil
	case float64:
		return Property{Data: []float32{float32(t)}}, nil
	case []interface{}:
		fs := make([]float32, len(t))
		for i, e := range t {
			switch num := e.(type) {
			case int:
				fs[i] = float32(num)
			case float64:
				fs[i] = float32(num)
			default:
				return Property{}, errors.Wrapf(ErrMalformedRecord, "list element %d is %T", i, e)
			}
		}
		return Property{Data: fs}, nil
	}
	return Property{}, errors.Wrapf(ErrMalformedRecord, "unsupported value %T", v)
}
