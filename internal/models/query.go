package models

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// SearchOrder selects how post search results are sorted.
type SearchOrder string

const (
	OrderNewest   SearchOrder = "newest"
	OrderOldest   SearchOrder = "oldest"
	OrderRelevant SearchOrder = "relevant"
	OrderRandom   SearchOrder = "random"
)

// ParseSearchOrder validates an order string from user input or a URL.
func ParseSearchOrder(s string) (SearchOrder, error) {
	switch SearchOrder(s) {
	case OrderNewest, OrderOldest, OrderRelevant, OrderRandom:
		return SearchOrder(s), nil
	}
	return "", fmt.Errorf("invalid search order %q", s)
}

// SearchQueryItem is a single filter: either a tag filter or a text filter.
type SearchQueryItem struct {
	Tag  *Tag
	Text string
}

// TagItem creates a tag filter item.
func TagItem(tag Tag) SearchQueryItem {
	return SearchQueryItem{Tag: &tag}
}

// TextItem creates a free-text filter item.
func TextItem(text string) SearchQueryItem {
	return SearchQueryItem{Text: text}
}

// IsTag reports whether the item filters by tag rather than by text.
func (i SearchQueryItem) IsTag() bool {
	return i.Tag != nil
}

// PostSearchQuery is an immutable post search: filter items, sort order,
// random seed and an optional pagination anchor. Transformations return new
// values; the receiver is never changed.
type PostSearchQuery struct {
	items     []SearchQueryItem
	order     SearchOrder
	seed      float64
	startPost int // -1 when unset
}

// EmptySearchQuery returns a query with no filters, relevance order and a
// fresh random seed.
func EmptySearchQuery() PostSearchQuery {
	return PostSearchQuery{order: OrderRelevant, seed: rand.Float64(), startPost: -1}
}

func (q PostSearchQuery) Items() []SearchQueryItem {
	items := make([]SearchQueryItem, len(q.items))
	copy(items, q.items)
	return items
}

func (q PostSearchQuery) Order() SearchOrder {
	return q.order
}

func (q PostSearchQuery) Seed() float64 {
	return q.seed
}

// StartPost returns the pagination anchor and whether one is set.
func (q PostSearchQuery) StartPost() (int, bool) {
	return q.startPost, q.startPost >= 0
}

// RandomizeSeed replaces the seed with a fresh random value. Called at
// explicit search submission so filter edits keep a stable random ordering.
func (q PostSearchQuery) RandomizeSeed() PostSearchQuery {
	q.seed = rand.Float64()
	return q
}

// SetTag replaces the whole filter list with the single given tag.
func (q PostSearchQuery) SetTag(tag Tag) PostSearchQuery {
	q.items = []SearchQueryItem{TagItem(tag)}
	return q
}

// AddTag appends a tag filter, replacing any existing entry for the same tag id.
func (q PostSearchQuery) AddTag(tag Tag) PostSearchQuery {
	items := make([]SearchQueryItem, 0, len(q.items)+1)
	for _, item := range q.items {
		if item.IsTag() && item.Tag.ID == tag.ID {
			continue
		}
		items = append(items, item)
	}
	q.items = append(items, TagItem(tag))
	return q
}

// AddText appends a text filter, replacing any existing entry with the same text.
func (q PostSearchQuery) AddText(text string) PostSearchQuery {
	items := make([]SearchQueryItem, 0, len(q.items)+1)
	for _, item := range q.items {
		if !item.IsTag() && item.Text == text {
			continue
		}
		items = append(items, item)
	}
	q.items = append(items, TextItem(text))
	return q
}

// SetOrder returns the query with the given sort order.
func (q PostSearchQuery) SetOrder(order SearchOrder) PostSearchQuery {
	q.order = order
	return q
}

// RemoveItem drops the filter at the given index. Out-of-range indexes are a no-op.
func (q PostSearchQuery) RemoveItem(index int) PostSearchQuery {
	if index < 0 || index >= len(q.items) {
		return q
	}
	items := make([]SearchQueryItem, 0, len(q.items)-1)
	items = append(items, q.items[:index]...)
	items = append(items, q.items[index+1:]...)
	q.items = items
	return q
}

// SetStartPost returns the query anchored at the given absolute post offset.
func (q PostSearchQuery) SetStartPost(offset int) PostSearchQuery {
	q.startPost = offset
	return q
}

// TagIDs returns the ids of all tag filter items, in order.
func (q PostSearchQuery) TagIDs() []int64 {
	var ids []int64
	for _, item := range q.items {
		if item.IsTag() {
			ids = append(ids, item.Tag.ID)
		}
	}
	return ids
}

// Texts returns all text filter strings, in order.
func (q PostSearchQuery) Texts() []string {
	var texts []string
	for _, item := range q.items {
		if !item.IsTag() {
			texts = append(texts, item.Text)
		}
	}
	return texts
}

// QueryParams serializes the query to the flat parameter map shared with the
// URL layer: order is always present, seed only for random order, tags as a
// comma-joined id list and text as a JSON string array, both only when
// non-empty.
func (q PostSearchQuery) QueryParams() map[string]string {
	params := map[string]string{
		"order": string(q.order),
	}

	if q.order == OrderRandom {
		params["seed"] = strconv.FormatFloat(q.seed, 'g', -1, 64)
	}

	if ids := q.TagIDs(); len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		params["tags"] = strings.Join(parts, ",")
	}

	if texts := q.Texts(); len(texts) > 0 {
		// Marshalling []string cannot fail.
		data, _ := json.Marshal(texts)
		params["text"] = string(data)
	}

	return params
}

// ParseQueryParams reconstructs a query from serialized parameters. Tags are
// restored by id only; an absent or malformed seed is randomized afresh.
func ParseQueryParams(params map[string]string) (PostSearchQuery, error) {
	query := EmptySearchQuery()

	if orderStr, ok := params["order"]; ok {
		order, err := ParseSearchOrder(orderStr)
		if err != nil {
			return PostSearchQuery{}, err
		}
		query = query.SetOrder(order)
	}

	if seedStr, ok := params["seed"]; ok {
		if seed, err := strconv.ParseFloat(seedStr, 64); err == nil {
			query.seed = seed
		}
	}

	if tagsStr, ok := params["tags"]; ok && tagsStr != "" {
		for _, part := range strings.Split(tagsStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return PostSearchQuery{}, fmt.Errorf("invalid tag id %q: %w", part, err)
			}
			query = query.AddTag(Tag{ID: id})
		}
	}

	if textStr, ok := params["text"]; ok && textStr != "" {
		var texts []string
		if err := json.Unmarshal([]byte(textStr), &texts); err != nil {
			return PostSearchQuery{}, fmt.Errorf("invalid text filter: %w", err)
		}
		for _, text := range texts {
			query = query.AddText(text)
		}
	}

	return query, nil
}
