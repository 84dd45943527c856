package db

import "go.mongodb.org/mongo-driver/bson"

// FilterBuilder helps build MongoDB filters fluently
type FilterBuilder struct {
	filter bson.M
}

// NewFilter creates a new FilterBuilder
func NewFilter() *FilterBuilder {
	return &FilterBuilder{filter: bson.M{}}
}

// Eq adds an equality condition
func (f *FilterBuilder) Eq(field string, value interface{}) *FilterBuilder {
	f.filter[field] = value
	return f
}

// Or combines multiple filters with OR
func (f *FilterBuilder) Or(filters ...bson.M) *FilterBuilder {
	if len(filters) > 0 {
		f.filter["$or"] = filters
	}
	return f
}

// Build returns the final bson.M filter
func (f *FilterBuilder) Build() bson.M {
	return f.filter
}

// Pair matches documents where sender/receiver equal the two identities in
// either direction. This is the conversation filter: the pair is unordered,
// so History(a,b) and History(b,a) build the same query.
func Pair(a, b string) bson.M {
	return NewFilter().Or(
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	).Build()
}

// Involving matches documents where the identity is sender or receiver.
func Involving(identity string) bson.M {
	return NewFilter().Or(
		bson.M{"sender": identity},
		bson.M{"receiver": identity},
	).Build()
}
