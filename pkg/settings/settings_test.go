package settings

import "testing"

func TestValidateRequiresPartitionKey(t *testing.T) {
	s := Settings{}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for missing partition key field")
	}
}

func TestValidateRejectsExplicitSortKeyWithPrefix(t *testing.T) {
	s := Settings{
		PartitionKeyField: "email",
		SortKeyField:      "name",
		SortKeyPrefix:     "User",
	}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for explicit sort key + configured prefix")
	}
}

func TestValidateRejectsReservedNames(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
	}{
		{"reserved term", Settings{PartitionKeyField: "email", ProtectedAttributes: []string{"term"}}},
		{"dunder prefix", Settings{PartitionKeyField: "email", PlaintextAttributes: []string{"__hidden"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsWellFormedSettings(t *testing.T) {
	s := Settings{
		TypeName:            "User",
		PartitionKeyField:   "email",
		ProtectedAttributes: []string{"name"},
		Indexes: []IndexSettings{
			{Name: "name", Fields: []string{"name"}, Operators: []string{"starts_with"}},
		},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolvedSortKey(t *testing.T) {
	withField := Settings{SortKeyField: "name"}
	if got := withField.ResolvedSortKey("Dan"); got != "Dan" {
		t.Fatalf("got %q", got)
	}

	withPrefix := Settings{SortKeyPrefix: "User"}
	if got := withPrefix.ResolvedSortKey("dan@example.co"); got != "User#dan@example.co" {
		t.Fatalf("got %q", got)
	}

	bare := Settings{TypeName: "User"}
	if got := bare.ResolvedSortKey("anything"); got != "User" {
		t.Fatalf("got %q", got)
	}
}

func TestIndexByName(t *testing.T) {
	s := Settings{
		Indexes: []IndexSettings{
			{Name: "email#name", Fields: []string{"email", "name"}, Operators: []string{"eq", "starts_with"}},
		},
	}
	if _, ok := s.IndexByName("missing"); ok {
		t.Fatal("expected no match")
	}
	idx, ok := s.IndexByName("email#name")
	if !ok || len(idx.Fields) != 2 {
		t.Fatalf("got %+v, %v", idx, ok)
	}
}
