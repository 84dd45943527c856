package db

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestPairIsSymmetric(t *testing.T) {
	ab := Pair("alice@clinic.test", "bob@clinic.test")
	ba := Pair("bob@clinic.test", "alice@clinic.test")

	or, ok := ab["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("pair filter should be a two-branch $or, got %v", ab)
	}

	// same branches, opposite order: both queries match the same documents
	reversed, ok := ba["$or"].([]bson.M)
	if !ok {
		t.Fatalf("pair filter should be a two-branch $or, got %v", ba)
	}
	if !reflect.DeepEqual(or[0], reversed[1]) || !reflect.DeepEqual(or[1], reversed[0]) {
		t.Errorf("Pair(a,b) and Pair(b,a) diverge: %v vs %v", ab, ba)
	}
}

func TestInvolvingMatchesBothDirections(t *testing.T) {
	got := Involving("alice@clinic.test")
	want := bson.M{"$or": []bson.M{
		{"sender": "alice@clinic.test"},
		{"receiver": "alice@clinic.test"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Involving = %v, want %v", got, want)
	}
}

func TestFilterBuilderEq(t *testing.T) {
	got := NewFilter().Eq("email", "alice@clinic.test").Build()
	if !reflect.DeepEqual(got, bson.M{"email": "alice@clinic.test"}) {
		t.Errorf("Eq filter = %v", got)
	}
}
