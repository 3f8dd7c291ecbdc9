package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// ObjTable is the language's table: a dense 1-based array part plus a
// string-keyed hash part, per spec §4.5 and original_source's table.h +
// object.c (newTable). The hash part is backed by
// github.com/dolthub/swiss (teacher dependency), keyed by the interned
// *ObjString pointer so lookups are pointer, not content, comparisons.
type ObjTable struct {
	Header
	Array []Value
	Hash  *swiss.Map[*ObjString, Value]
}

// NewTable returns an empty table.
func NewTable() *ObjTable {
	return &ObjTable{Header: newHeader(ObjTypeTable), Hash: swiss.NewMap[*ObjString, Value](8)}
}

func (t *ObjTable) String() string {
	return fmt.Sprintf("table(%p)", t)
}

// Len returns the array-part length, used by the LENGTH opcode and `#`.
func (t *ObjTable) Len() int { return len(t.Array) }

// GetIndex returns the 1-based array element at i, or nil if out of range.
func (t *ObjTable) GetIndex(i int) Value {
	if i < 1 || i > len(t.Array) {
		return Nil
	}
	return t.Array[i-1]
}

// SetIndex stores v at the 1-based array index i, growing the array with
// nil padding up to i when i lies past the end, per spec §4.5. Indices
// below 1 are ignored.
func (t *ObjTable) SetIndex(i int, v Value) {
	if i < 1 {
		return
	}
	if i <= len(t.Array) {
		t.Array[i-1] = v
		return
	}
	for len(t.Array) < i-1 {
		t.Array = append(t.Array, Nil)
	}
	t.Array = append(t.Array, v)
}

// Append adds v to the end of the array part (TABLE_ADD, table-literal
// positional items).
func (t *ObjTable) Append(v Value) {
	t.Array = append(t.Array, v)
}

// GetField returns the hash-part value for key, or nil if absent. GET
// never errors on a missing key, per spec §4.5.
func (t *ObjTable) GetField(key *ObjString) Value {
	v, ok := t.Hash.Get(key)
	if !ok {
		return Nil
	}
	return v
}

// SetField stores v under the string key.
func (t *ObjTable) SetField(key *ObjString, v Value) {
	t.Hash.Put(key, v)
}

// Get implements generic table[key] access for any key Value: integers
// route to the array part, strings to the hash part, anything else (per
// spec §4.5) is rejected by the caller before reaching here for SET, but
// GET simply returns nil.
func (t *ObjTable) Get(key Value) Value {
	if key.IsNumber() {
		return t.GetIndex(int(key.AsNumber()))
	}
	if key.IsObj() {
		if s, ok := key.AsObj().(*ObjString); ok {
			return t.GetField(s)
		}
	}
	return Nil
}

// Set implements generic table[key] = value assignment. It reports
// whether key was an acceptable type (positive integer or string); other
// key types are rejected, matching object.c/vm.c's TABLE_SET error.
func (t *ObjTable) Set(key, v Value) bool {
	if key.IsNumber() {
		n := key.AsNumber()
		i := int(n)
		if float64(i) != n || i < 1 {
			return false
		}
		t.SetIndex(i, v)
		return true
	}
	if key.IsObj() {
		if s, ok := key.AsObj().(*ObjString); ok {
			t.SetField(s, v)
			return true
		}
	}
	return false
}

// ForEach walks array part then hash part, per spec §4.5's "length,
// pairs, and ipairs iterate array first then hash."
func (t *ObjTable) ForEach(fn func(key, val Value) bool) {
	for i, v := range t.Array {
		if !fn(Number(float64(i+1)), v) {
			return
		}
	}
	t.Hash.Iter(func(k *ObjString, v Value) bool {
		return !fn(FromObj(k), v)
	})
}
