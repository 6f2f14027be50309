// SPDX-License-Identifier: MPL-2.0

package toolkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// errModulesShape is returned when encoded tools are not a mapping.
var errModulesShape = errors.New("tools must map module paths to tool names")

// MarshalJSON encodes the modules as a JSON object, keys in module order.
func (ms Modules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range ms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Path)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(nonNil(m.Tools))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (ms *Modules) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*ms = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errModulesShape
	}

	out := Modules{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		path, _ := tok.(string)
		var tools []string
		if err := dec.Decode(&tools); err != nil {
			return fmt.Errorf("tools[%q]: %w", path, err)
		}
		out = append(out, Module{Path: path, Tools: nonNil(tools)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ms = out
	return nil
}

// MarshalYAML encodes the modules as a YAML mapping, keys in module order.
func (ms Modules) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, m := range ms {
		var val yaml.Node
		if err := val.Encode(nonNil(m.Tools)); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Path}, &val)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping, keeping key order.
func (ms *Modules) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*ms = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %w", value.Line, errModulesShape)
	}

	out := make(Modules, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		path := value.Content[i].Value
		var tools []string
		if err := value.Content[i+1].Decode(&tools); err != nil {
			return fmt.Errorf("tools[%q]: %w", path, err)
		}
		out = append(out, Module{Path: path, Tools: nonNil(tools)})
	}
	*ms = out
	return nil
}

func nonNil(tools []string) []string {
	if tools == nil {
		return []string{}
	}
	return tools
}
