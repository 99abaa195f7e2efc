package types

import "fmt"

// ArrayKey is a literal array key: either an integer or a string.
type ArrayKey struct {
	IsInt bool
	Int   int64
	Str   string
}

func IntKey(v int64) ArrayKey  { return ArrayKey{IsInt: true, Int: v} }
func StrKey(v string) ArrayKey { return ArrayKey{Str: v} }

func (k ArrayKey) String() string {
	if k.IsInt {
		return fmt.Sprintf("%d", k.Int)
	}
	return "'" + k.Str + "'"
}

// Equal is total equality on literal keys.
func (k ArrayKey) Equal(other ArrayKey) bool {
	if k.IsInt != other.IsInt {
		return false
	}
	if k.IsInt {
		return k.Int == other.Int
	}
	return k.Str == other.Str
}

// KeyedEntry is one known offset of an array shape.
type KeyedEntry struct {
	PossiblyUndefined bool
	Value             *Union
}

func (e KeyedEntry) clone() KeyedEntry {
	return KeyedEntry{PossiblyUndefined: e.PossiblyUndefined, Value: e.Value.Clone()}
}

// KeyedItem pairs a literal key with its entry; order is declaration order.
type KeyedItem struct {
	Key   ArrayKey
	Entry KeyedEntry
}

// KeyValue carries the residual key/value parameters of an unsealed shape.
type KeyValue struct {
	Key   *Union
	Value *Union
}

func (kv *KeyValue) clone() *KeyValue {
	if kv == nil {
		return nil
	}
	return &KeyValue{Key: kv.Key.Clone(), Value: kv.Value.Clone()}
}

// TKeyedArray is an array with (partially) known shape. A nil Parameters
// means the shape is sealed: only the known items exist.
type TKeyedArray struct {
	KnownItems []KeyedItem
	Parameters *KeyValue
	NonEmpty   bool
}

func (*TKeyedArray) AtomicKind() Kind { return KindKeyedArray }
func (t *TKeyedArray) Clone() Atomic {
	c := &TKeyedArray{
		Parameters: t.Parameters.clone(),
		NonEmpty:   t.NonEmpty,
	}
	if len(t.KnownItems) > 0 {
		c.KnownItems = make([]KeyedItem, len(t.KnownItems))
		for i, it := range t.KnownItems {
			c.KnownItems[i] = KeyedItem{Key: it.Key, Entry: it.Entry.clone()}
		}
	}
	return c
}

// NewKeyedArray is array<K, V> with no known items.
func NewKeyedArray(key, value *Union) *TKeyedArray {
	return &TKeyedArray{Parameters: &KeyValue{Key: key, Value: value}}
}

// NewEmptyArray is array{} — sealed and empty.
func NewEmptyArray() *TKeyedArray { return &TKeyedArray{} }

// Item returns the entry for a literal key when known.
func (t *TKeyedArray) Item(key ArrayKey) (KeyedEntry, bool) {
	for _, it := range t.KnownItems {
		if it.Key.Equal(key) {
			return it.Entry, true
		}
	}
	return KeyedEntry{}, false
}

// SetItem inserts or replaces the entry for a literal key, keeping order.
func (t *TKeyedArray) SetItem(key ArrayKey, entry KeyedEntry) {
	for i, it := range t.KnownItems {
		if it.Key.Equal(key) {
			t.KnownItems[i].Entry = entry
			return
		}
	}
	t.KnownItems = append(t.KnownItems, KeyedItem{Key: key, Entry: entry})
}

// RemoveItem drops a known key; reports whether it was present.
func (t *TKeyedArray) RemoveItem(key ArrayKey) bool {
	for i, it := range t.KnownItems {
		if it.Key.Equal(key) {
			t.KnownItems = append(t.KnownItems[:i], t.KnownItems[i+1:]...)
			return true
		}
	}
	return false
}

// Sealed reports whether the shape admits no unknown keys.
func (t *TKeyedArray) Sealed() bool { return t.Parameters == nil }

// ListItem is one known index of a list.
type ListItem struct {
	Index int
	Entry KeyedEntry
}

// TList is a zero-based contiguous array.
type TList struct {
	KnownElements []ListItem
	ElementType   *Union
	NonEmpty      bool
	KnownCount    *int
}

func (*TList) AtomicKind() Kind { return KindList }
func (t *TList) Clone() Atomic {
	c := &TList{
		ElementType: t.ElementType.Clone(),
		NonEmpty:    t.NonEmpty,
	}
	if t.KnownCount != nil {
		v := *t.KnownCount
		c.KnownCount = &v
	}
	if len(t.KnownElements) > 0 {
		c.KnownElements = make([]ListItem, len(t.KnownElements))
		for i, el := range t.KnownElements {
			c.KnownElements[i] = ListItem{Index: el.Index, Entry: el.Entry.clone()}
		}
	}
	return c
}

// NewList is list<T>.
func NewList(element *Union) *TList { return &TList{ElementType: element} }

// NewNonEmptyList is non-empty-list<T>.
func NewNonEmptyList(element *Union) *TList {
	return &TList{ElementType: element, NonEmpty: true}
}

// Element returns the entry at a known index.
func (t *TList) Element(index int) (KeyedEntry, bool) {
	for _, el := range t.KnownElements {
		if el.Index == index {
			return el.Entry, true
		}
	}
	return KeyedEntry{}, false
}

// SetElement inserts or replaces a known index.
func (t *TList) SetElement(index int, entry KeyedEntry) {
	for i, el := range t.KnownElements {
		if el.Index == index {
			t.KnownElements[i].Entry = entry
			return
		}
	}
	t.KnownElements = append(t.KnownElements, ListItem{Index: index, Entry: entry})
}

// TIterable is iterable<K, V>; abstract, distinct from array.
type TIterable struct {
	Key   *Union
	Value *Union
}

func (*TIterable) AtomicKind() Kind { return KindIterable }
func (t *TIterable) Clone() Atomic {
	return &TIterable{Key: t.Key.Clone(), Value: t.Value.Clone()}
}
