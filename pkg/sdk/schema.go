package intramind

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const tagKey = "intramind"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type // struct type for reconstruction

	// Field index in the struct for each role.
	idIdx      int
	contentIdx int

	// Declared filterable fields for collection creation.
	fields []FieldSchema

	// Mapping from struct field index → metadata key.
	stringFields []fieldMapping
	numberFields []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts intramind struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("intramind: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, contentIdx: -1}

	for i, n := 0, t.NumField(); i < n; i++ {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	return validateSchema(meta, t)
}

// applyTag processes a single struct field's intramind tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	modifier := ""
	if len(parts) == 2 {
		modifier = parts[1]
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("intramind: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("intramind: id field %s must be a string", f.Name)
		}
		meta.idIdx = idx
	case "content":
		if meta.contentIdx != -1 {
			return fmt.Errorf("intramind: duplicate content tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("intramind: content field %s must be a string", f.Name)
		}
		meta.contentIdx = idx
	case "string":
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("intramind: string field %s must be a string", f.Name)
		}
		meta.fields = append(meta.fields, FieldSchema{Name: name, Type: FieldString})
		meta.stringFields = append(meta.stringFields, fieldMapping{structIdx: idx, name: name})
	case "number":
		if !isNumericKind(f.Type.Kind()) {
			return fmt.Errorf("intramind: number field %s must be numeric", f.Name)
		}
		meta.fields = append(meta.fields, FieldSchema{Name: name, Type: FieldNumber})
		meta.numberFields = append(meta.numberFields, fieldMapping{structIdx: idx, name: name})
	case "":
		// Field without a modifier is stored as metadata but not declared
		// in the schema, so it cannot be filtered on.
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("intramind: unindexed field %s must be a string (use the number modifier for numbers)", f.Name)
		}
		meta.stringFields = append(meta.stringFields, fieldMapping{structIdx: idx, name: name})
	default:
		return fmt.Errorf("intramind: unknown modifier %q on field %s", modifier, f.Name)
	}
	return nil
}

func validateSchema(meta *schemaMeta, t reflect.Type) (*schemaMeta, error) {
	if meta.idIdx == -1 {
		return nil, fmt.Errorf("intramind: no field with `intramind:\"...,id\"` tag in %s", t)
	}
	if meta.contentIdx == -1 {
		return nil, fmt.Errorf("intramind: no field with `intramind:\"...,content\"` tag in %s", t)
	}
	return meta, nil
}

// collectionOptions builds CollectionOption slice from parsed schema.
func (m *schemaMeta) collectionOptions() []CollectionOption {
	opts := make([]CollectionOption, 0, len(m.fields))
	for _, f := range m.fields {
		opts = append(opts, WithMetadataField(f.Name, f.Type))
	}
	return opts
}

// toDocument converts a typed struct to Document using schema metadata.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	md := make(map[string]string, len(m.stringFields)+len(m.numberFields))
	for _, sf := range m.stringFields {
		md[sf.name] = fmt.Sprint(v.Field(sf.structIdx).Interface())
	}
	for _, nf := range m.numberFields {
		md[nf.name] = strconv.FormatFloat(toFloat64(v.Field(nf.structIdx)), 'f', -1, 64)
	}

	return Document{
		ID:       v.Field(m.idIdx).String(),
		Content:  v.Field(m.contentIdx).String(),
		Metadata: md,
	}
}

// fromFields reconstructs a typed struct from stored document parts.
func (m *schemaMeta) fromFields(id, content string, metadata map[string]string) any {
	v := reflect.New(m.typ).Elem()

	v.Field(m.idIdx).SetString(id)
	v.Field(m.contentIdx).SetString(content)
	for _, sf := range m.stringFields {
		if val, ok := metadata[sf.name]; ok {
			v.Field(sf.structIdx).SetString(val)
		}
	}
	for _, nf := range m.numberFields {
		if val, ok := metadata[nf.name]; ok {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				setFloat(v.Field(nf.structIdx), f)
			}
		}
	}
	return v.Interface()
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return 0
	}
}

func setFloat(v reflect.Value, f float64) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(f))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(f))
	}
}
