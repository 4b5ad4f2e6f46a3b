package models

// StorageEntry represents a rendered contract instance storage key-value pair
type StorageEntry struct {
	Key     string `json:"key"`      // Rendered key
	KeyType string `json:"key_type"` // XDR type name of the key

	Value     interface{} `json:"value"`      // Parsed value
	ValueType string      `json:"value_type"` // Type of the value
	RawKey    []byte      `json:"-"`
	RawValue  []byte      `json:"-"`
}
