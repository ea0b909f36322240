package cmdlet

import "strings"

// Field is a single key/value pair of a record.
type Field struct {
	Key   string
	Value string
	// Null is set when the field has no value, renderers show an empty cell.
	Null bool
}

// Record is one row of structured output. Keys are unique and keep the order
// they were first set in.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// RecordOf builds a record from alternating keys and values.
func RecordOf(pairs ...string) *Record {
	if len(pairs)%2 != 0 {
		panic("cmdlet.RecordOf: odd number of arguments")
	}

	r := NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func (r *Record) put(f Field) *Record {
	if r.index == nil {
		r.index = make(map[string]int)
	}

	if i, ok := r.index[f.Key]; ok {
		r.fields[i] = f
		return r
	}
	r.index[f.Key] = len(r.fields)
	r.fields = append(r.fields, f)
	return r
}

// Set stores a value. Setting an existing key replaces the value in place.
func (r *Record) Set(key, value string) *Record {
	return r.put(Field{Key: key, Value: value})
}

// SetNull stores a key without a value.
func (r *Record) SetNull(key string) *Record {
	return r.put(Field{Key: key, Null: true})
}

// SetPtr stores value, or null if value is nil.
func (r *Record) SetPtr(key string, value *string) *Record {
	if value == nil {
		return r.SetNull(key)
	}
	return r.Set(key, *value)
}

// Get returns the value of key. The bool is false if the key is missing or
// null.
func (r *Record) Get(key string) (string, bool) {
	f, ok := r.Field(key)
	if !ok || f.Null {
		return "", false
	}
	return f.Value, true
}

// Field returns the field stored under exactly key.
func (r *Record) Field(key string) (Field, bool) {
	i, ok := r.index[key]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Lookup finds a field by case-insensitive key.
func (r *Record) Lookup(name string) (Field, bool) {
	if f, ok := r.Field(name); ok {
		return f, true
	}
	for _, f := range r.fields {
		if strings.EqualFold(f.Key, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the keys in display order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Key
	}
	return out
}

// Fields returns a copy of the fields in display order.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Clone returns a copy of the record that can be modified independently.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for _, f := range r.fields {
		out.put(f)
	}
	return out
}

// Result is the ordered output of a command. A Result handed to the next
// stage is read-only, commands that derive data build a new one.
type Result []*Record

// Columns returns the union of record keys in order of first appearance.
func (res Result) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range res {
		for _, f := range r.fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				out = append(out, f.Key)
			}
		}
	}
	return out
}
