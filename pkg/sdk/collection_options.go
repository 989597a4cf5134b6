package intramind

// CollectionOption configures collection creation.
type CollectionOption interface {
	applyCollection(*collectionConfig)
}

// collectionOptionFunc adapts a function to the CollectionOption interface.
type collectionOptionFunc func(*collectionConfig)

func (f collectionOptionFunc) applyCollection(c *collectionConfig) { f(c) }

type collectionConfig struct {
	description string
	fields      []FieldSchema
}

// WithDescription sets a human-readable collection description.
func WithDescription(desc string) CollectionOption {
	return collectionOptionFunc(func(c *collectionConfig) {
		c.description = desc
	})
}

// WithMetadataField declares a filterable metadata field on the collection.
func WithMetadataField(name string, ft FieldType) CollectionOption {
	return collectionOptionFunc(func(c *collectionConfig) {
		c.fields = append(c.fields, FieldSchema{Name: name, Type: ft})
	})
}
