// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"
)

func TestSearchCriteriaIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		criteria SearchCriteria
		want     bool
	}{
		{"empty", SearchCriteria{}, true},
		{"free text", SearchCriteria{Query: "attention"}, false},
		{"author only", SearchCriteria{Author: "Smith"}, false},
		{"title only", SearchCriteria{Title: "BERT"}, false},
		{"categories only", SearchCriteria{Categories: []string{"cs.LG"}}, false},
		{"date only", SearchCriteria{StartDate: time.Now()}, false},
		{"limit alone is empty", SearchCriteria{Limit: 10, Offset: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
