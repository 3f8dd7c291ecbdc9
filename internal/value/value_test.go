package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Juicywoowowow/Luaplusplus/internal/value"
)

func TestTableArrayPartGrowsWithNilPadding(t *testing.T) {
	tbl := value.NewTable()
	tbl.SetIndex(3, value.Number(9))

	require.Equal(t, 3, tbl.Len())
	require.True(t, tbl.GetIndex(1).IsNil())
	require.True(t, tbl.GetIndex(2).IsNil())
	require.Equal(t, 9.0, tbl.GetIndex(3).AsNumber())
	require.True(t, tbl.GetIndex(4).IsNil())
}

func TestTableHashPartRoundTrips(t *testing.T) {
	interner := value.NewInterner()
	key := internString(interner, "name")

	tbl := value.NewTable()
	require.True(t, tbl.GetField(key).IsNil())

	tbl.SetField(key, value.Number(42))
	require.Equal(t, 42.0, tbl.GetField(key).AsNumber())
}

func TestInternerDeduplicatesByContent(t *testing.T) {
	interner := value.NewInterner()
	a := internString(interner, "hello")
	b := internString(interner, "hello")

	require.Same(t, a, b)
}

func TestInternerRemoveWhiteDropsUnmarked(t *testing.T) {
	interner := value.NewInterner()
	s := internString(interner, "transient")
	require.False(t, s.IsMarked())

	interner.RemoveWhite()

	_, ok := interner.Find("transient")
	require.False(t, ok)
}

func TestInternerRemoveWhiteKeepsMarked(t *testing.T) {
	interner := value.NewInterner()
	s := internString(interner, "kept")
	s.SetMarked(true)

	interner.RemoveWhite()

	found, ok := interner.Find("kept")
	require.True(t, ok)
	require.Same(t, s, found)
}

func TestClassInheritCopiesMethodsAndPrivates(t *testing.T) {
	interner := value.NewInterner()
	greet := internString(interner, "greet")
	secret := internString(interner, "secret")

	base := value.NewClass(internString(interner, "Base"))
	base.Methods.Put(greet, value.Number(1))
	base.Privates.Put(secret, true)

	sub := value.NewClass(internString(interner, "Sub"))
	sub.Inherit(base)

	_, ok := sub.Method(greet)
	require.True(t, ok)
	require.True(t, sub.IsPrivate(secret))
	require.Same(t, base, sub.Super)
}

func TestClassImplementMergesTraitMethods(t *testing.T) {
	interner := value.NewInterner()
	hello := internString(interner, "hello")

	trait := value.NewTrait(internString(interner, "Greeter"))
	trait.Methods.Put(hello, value.Number(7))

	cls := value.NewClass(internString(interner, "Person"))
	cls.Implement(trait)

	got, ok := cls.Method(hello)
	require.True(t, ok)
	require.Equal(t, 7.0, got.AsNumber())
}

func internString(in *value.Interner, s string) *value.ObjString {
	if found, ok := in.Find(s); ok {
		return found
	}
	obj := &value.ObjString{Chars: s, Hash: value.HashFNV1a(s)}
	in.Intern(obj)
	return obj
}
