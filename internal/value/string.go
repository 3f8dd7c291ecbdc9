package value

import "github.com/dolthub/swiss"

// ObjString is an interned, immutable string. Identity equals content
// equality because every ObjString is produced through an Interner.
type ObjString struct {
	Header
	Chars string
	Hash  uint32
}

func (s *ObjString) String() string { return s.Chars }

// HashFNV1a computes the 32-bit FNV-1a hash used to key interned strings,
// ported verbatim from object.c's hashString.
func HashFNV1a(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// Interner is the VM-wide weak table guaranteeing that content-equal
// strings share one ObjString, ported from object.c's allocateString /
// copyString / takeString plus the weak-table sweep rule in
// memory.c / spec §4.3. Backed by github.com/dolthub/swiss for the
// content-keyed lookup (teacher dependency).
type Interner struct {
	m *swiss.Map[string, *ObjString]
}

// NewInterner returns an empty string-intern table.
func NewInterner() *Interner {
	return &Interner{m: swiss.NewMap[string, *ObjString](64)}
}

// Find returns the already-interned string equal to s, if any.
func (in *Interner) Find(s string) (*ObjString, bool) {
	return in.m.Get(s)
}

// Intern registers obj (whose Chars must equal content) as the canonical
// interned string for its content, assuming Find already returned false.
func (in *Interner) Intern(obj *ObjString) {
	in.m.Put(obj.Chars, obj)
}

// RemoveWhite drops every entry whose ObjString was not marked by the last
// GC trace, per spec §4.3's "string-intern weak table" rule: an unmarked
// string must stop being findable by content before sweep frees it.
func (in *Interner) RemoveWhite() {
	var dead []string
	in.m.Iter(func(k string, v *ObjString) bool {
		if !v.IsMarked() {
			dead = append(dead, k)
		}
		return false
	})
	for _, k := range dead {
		in.m.Delete(k)
	}
}
