package record

// Attributes is an insertion-ordered map from field key to value. The
// serializer emits fields in this order.
type Attributes struct {
	keys   []string
	values map[string]interface{}
}

// Set assigns a value. A new key is appended; an existing key keeps its
// position.
func (a *Attributes) Set(key string, value interface{}) {
	if a.values == nil {
		a.values = make(map[string]interface{})
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key.
func (a *Attributes) Get(key string) (interface{}, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Delete removes a key.
func (a *Attributes) Delete(key string) {
	if _, exists := a.values[key]; !exists {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (a *Attributes) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of keys.
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Each calls fn for every key in insertion order, stopping at the first
// error.
func (a *Attributes) Each(fn func(key string, value interface{}) error) error {
	for _, key := range a.keys {
		if err := fn(key, a.values[key]); err != nil {
			return err
		}
	}
	return nil
}

// Map returns a copy of the attributes as a plain map.
func (a *Attributes) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(a.keys))
	for _, key := range a.keys {
		m[key] = a.values[key]
	}
	return m
}
