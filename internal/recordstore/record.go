package recordstore

import "github.com/bytedance/sonic"

// Record is anything the store can persist. IDs are immutable once assigned
// and unique within a collection.
type Record interface {
	RecordID() string
}

// validatable is checked before any write; a failing record aborts the
// whole transaction it is part of.
type validatable interface {
	Validate() error
}

// IndexSpec declares a secondary index over one field of a collection.
// Keys extracts the indexed values from a record; multi-valued fields yield
// one key per element.
type IndexSpec struct {
	Name string
	Keys func(Record) []string
}

// CollectionSpec declares a named collection, its secondary indexes and how
// to decode its stored payloads back into domain records.
type CollectionSpec struct {
	Name    string
	Indexes []IndexSpec
	Decode  func([]byte) (Record, error)
}

func (c CollectionSpec) index(name string) (IndexSpec, bool) {
	for _, idx := range c.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexSpec{}, false
}

func decodeAs[T Record](data []byte) (Record, error) {
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
