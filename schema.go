package anvil

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// SchemaFor generates a JSON Schema object from a struct type T.
//
// Field names are taken from json tags. Supported struct tags:
//
//	desc:"..."      sets the field description
//	required:"true" marks the field as required
//	enum:"a,b,c"    restricts a string field to the listed values
//
// Example:
//
//	type SearchArgs struct {
//	    Query      string `json:"query" desc:"Search query" required:"true"`
//	    MaxResults int    `json:"max_results" desc:"Maximum number of results"`
//	}
//
//	schema, err := anvil.SchemaFor[SearchArgs]()
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("anvil: SchemaFor requires a struct type, got %v", t)
	}

	node, err := structSchema(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

// schemaNode is the serialized JSON Schema representation. Field order in
// the marshaled output follows declaration order here.
type schemaNode struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Items       *schemaNode            `json:"items,omitempty"`
	Properties  map[string]*schemaNode `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

func structSchema(t reflect.Type) (*schemaNode, error) {
	node := &schemaNode{
		Type:       "object",
		Properties: make(map[string]*schemaNode),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		prop, err := typeSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("anvil: field %q: %w", name, err)
		}
		if desc := field.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			if prop.Type != "string" {
				return nil, fmt.Errorf("anvil: field %q: enum tag requires a string field", name)
			}
			prop.Enum = strings.Split(enum, ",")
		}
		if field.Tag.Get("required") == "true" {
			node.Required = append(node.Required, name)
		}

		node.Properties[name] = prop
	}

	return node, nil
}

func typeSchema(t reflect.Type) (*schemaNode, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &schemaNode{Type: "string"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &schemaNode{Type: "integer"}, nil

	case reflect.Float32, reflect.Float64:
		return &schemaNode{Type: "number"}, nil

	case reflect.Bool:
		return &schemaNode{Type: "boolean"}, nil

	case reflect.Slice, reflect.Array:
		items, err := typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &schemaNode{Type: "array", Items: items}, nil

	case reflect.Struct:
		return structSchema(t)

	case reflect.Map:
		// Maps become objects with no defined properties.
		return &schemaNode{Type: "object"}, nil

	default:
		return nil, fmt.Errorf("unsupported type %v", t)
	}
}
