package cmdlet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	r := RecordOf("Name", "DC01", "OS", "Windows")
	r.SetNull("Description")
	r.Set("Name", "DC02")

	assert.Equal(t, []string{"Name", "OS", "Description"}, r.Keys())
	assert.Equal(t, 3, r.Len())

	name, ok := r.Get("Name")
	assert.True(t, ok)
	assert.Equal(t, "DC02", name)

	_, ok = r.Get("Description")
	assert.False(t, ok, "null values aren't returned by Get")

	f, ok := r.Field("Description")
	assert.True(t, ok)
	assert.True(t, f.Null)

	_, ok = r.Field("name")
	assert.False(t, ok, "Field is case sensitive")

	f, ok = r.Lookup("name")
	assert.True(t, ok)
	assert.Equal(t, "DC02", f.Value)
}

func TestRecord_SetPtr(t *testing.T) {
	value := "x"
	r := NewRecord().SetPtr("a", &value).SetPtr("b", nil)

	assert.Equal(t, []Field{{Key: "a", Value: "x"}, {Key: "b", Null: true}}, r.Fields())
}

func TestRecord_Clone(t *testing.T) {
	orig := RecordOf("a", "1")
	clone := orig.Clone()
	clone.Set("a", "2").Set("b", "3")

	v, _ := orig.Get("a")
	assert.Equal(t, "1", v)
	assert.Equal(t, 1, orig.Len())
	assert.Equal(t, []string{"a", "b"}, clone.Keys())
}

func TestRecord_zeroValue(t *testing.T) {
	var r Record
	r.Set("a", "1")
	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestRecordOf_odd(t *testing.T) {
	assert.Panics(t, func() { RecordOf("a") })
}

func TestResult_Columns(t *testing.T) {
	res := Result{
		RecordOf("Name", "a", "Mail", "a@corp"),
		RecordOf("Name", "b", "Title", "CEO"),
		NewRecord().SetNull("Mail").Set("Phone", "1"),
	}

	assert.Equal(t, []string{"Name", "Mail", "Title", "Phone"}, res.Columns())
	assert.Nil(t, Result{}.Columns())
}
