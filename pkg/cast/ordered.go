package cast

import (
	"encoding/json"
	"strconv"

	"github.com/goliatone/go-statestore/internal/snapshot"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedObject is a decoded JSON object that keeps its source key order.
type OrderedObject = orderedmap.OrderedMap[string, any]

// NewOrderedObject returns an empty OrderedObject.
func NewOrderedObject() *OrderedObject {
	return orderedmap.New[string, any]()
}

// Collection is an ordered sequence of decoded JSON values. Lists are keyed
// by position; objects keep their own keys in source order.
type Collection struct {
	items *orderedmap.OrderedMap[string, any]
	list  bool
}

// NewCollection builds a list collection holding values.
func NewCollection(values ...any) *Collection {
	c := &Collection{items: orderedmap.New[string, any](), list: true}
	for _, value := range values {
		c.Push(value)
	}
	return c
}

// Len reports the number of items.
func (c *Collection) Len() int {
	if c == nil || c.items == nil {
		return 0
	}
	return c.items.Len()
}

// IsList reports whether the collection is positional.
func (c *Collection) IsList() bool {
	return c == nil || c.list
}

// Keys returns item keys in order. List keys are decimal positions.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, c.Len())
	if c.Len() == 0 {
		return keys
	}
	for pair := c.items.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns item values in order.
func (c *Collection) Values() []any {
	values := make([]any, 0, c.Len())
	if c.Len() == 0 {
		return values
	}
	for pair := c.items.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}

// Get looks up an item by key (or decimal position for lists).
func (c *Collection) Get(key string) (any, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	return c.items.Get(key)
}

// Index returns the item at position i in iteration order.
func (c *Collection) Index(i int) (any, bool) {
	if i < 0 || i >= c.Len() {
		return nil, false
	}
	pair := c.items.Oldest()
	for ; i > 0; i-- {
		pair = pair.Next()
	}
	return pair.Value, true
}

// Push appends value. Pushing onto a keyed collection uses the next free
// decimal key.
func (c *Collection) Push(value any) {
	if c.items == nil {
		c.items = orderedmap.New[string, any]()
		c.list = true
	}
	key := strconv.Itoa(c.items.Len())
	for {
		if _, exists := c.items.Get(key); !exists {
			break
		}
		key += "_"
	}
	c.items.Set(key, value)
}

// Put stores value under key, turning a list into a keyed collection when the
// key is not the next position.
func (c *Collection) Put(key string, value any) {
	if c.items == nil {
		c.items = orderedmap.New[string, any]()
		c.list = true
	}
	if _, exists := c.items.Get(key); !exists && key != strconv.Itoa(c.items.Len()) {
		c.list = false
	}
	c.items.Set(key, value)
}

// Plain returns the collection as []any or map[string]any with nested
// ordered values flattened to plain structures.
func (c *Collection) Plain() any {
	if c.IsList() {
		out := make([]any, 0, c.Len())
		for _, value := range c.Values() {
			out = append(out, plainValue(value))
		}
		return out
	}
	out := make(map[string]any, c.Len())
	for pair := c.items.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = plainValue(pair.Value)
	}
	return out
}

// MarshalJSON renders lists as arrays and keyed collections as objects in
// insertion order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c.IsList() {
		return json.Marshal(c.Values())
	}
	return c.items.MarshalJSON()
}

// CollectionCast decodes raw JSON into a *Collection. Nil and invalid input
// decode to an empty collection; scalars become a one item collection. When
// Item is set every element passes through it in both directions.
type CollectionCast struct {
	Item Cast
}

// Get implements Cast.
func (c CollectionCast) Get(key string, raw any) (any, error) {
	if typed, ok := raw.(*Collection); ok && typed != nil {
		if text, ok := orderedText(typed); ok {
			raw = text
		}
	}
	result, ok := parseResult(raw)
	if !ok || result.Type == gjson.Null {
		return NewCollection(), nil
	}
	if !result.IsObject() && !result.IsArray() {
		item, err := c.item(key, orderedValue(result), false)
		if err != nil {
			return nil, err
		}
		return NewCollection(item), nil
	}
	collection := &Collection{items: orderedmap.New[string, any](), list: result.IsArray()}
	position := 0
	var failure error
	result.ForEach(func(itemKey, value gjson.Result) bool {
		item, err := c.item(key, orderedValue(value), false)
		if err != nil {
			failure = err
			return false
		}
		if collection.list {
			collection.items.Set(strconv.Itoa(position), item)
			position++
			return true
		}
		collection.items.Set(itemKey.String(), item)
		return true
	})
	if failure != nil {
		return nil, failure
	}
	return collection, nil
}

// Set implements Cast. Lists and objects are stored as compact JSON text in
// source order with Item applied to every element. Scalars are stored like
// JSON.Set.
func (c CollectionCast) Set(key string, value any) (any, error) {
	text, ok := orderedText(value)
	if !ok {
		return encodePlain(value), nil
	}
	if c.Item == nil {
		return text, nil
	}
	decoded, err := CollectionCast{}.Get(key, text)
	if err != nil {
		return nil, err
	}
	collection := decoded.(*Collection)
	for pair := collection.items.Oldest(); pair != nil; pair = pair.Next() {
		stored, err := c.item(key, plainValue(pair.Value), true)
		if err != nil {
			return nil, err
		}
		pair.Value = stored
	}
	encoded, err := json.Marshal(collection)
	if err != nil {
		return nil, &ParseError{Cast: KindCollection, Key: key, Value: value, Err: err}
	}
	return string(encoded), nil
}

func (c CollectionCast) item(key string, value any, set bool) (any, error) {
	if c.Item == nil {
		return value, nil
	}
	if set {
		return c.Item.Set(key, value)
	}
	return c.Item.Get(key, plainValue(value))
}

func orderedValue(result gjson.Result) any {
	switch {
	case result.IsObject():
		object := NewOrderedObject()
		result.ForEach(func(key, value gjson.Result) bool {
			object.Set(key.String(), orderedValue(value))
			return true
		})
		return object
	case result.IsArray():
		items := make([]any, 0)
		result.ForEach(func(_, value gjson.Result) bool {
			items = append(items, orderedValue(value))
			return true
		})
		return items
	}
	switch result.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		return snapshot.Number(result.Raw)
	default:
		return result.String()
	}
}

func plainValue(value any) any {
	switch typed := value.(type) {
	case *OrderedObject:
		out := make(map[string]any, typed.Len())
		for pair := typed.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plainValue(pair.Value)
		}
		return out
	case *Collection:
		return typed.Plain()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = plainValue(item)
		}
		return out
	default:
		return value
	}
}
