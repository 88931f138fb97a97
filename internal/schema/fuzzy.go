package schema

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// FuzzyMatchEntity corrects a user-supplied key against the entity
// vocabulary. An entity whose long name starts with userKey scores 1.0;
// otherwise the score is the quick similarity ratio of the two strings. The
// highest score wins; equal scores resolve to the later entity in
// enumeration order. It never fails while the vocabulary is non-empty.
func (s *Schema) FuzzyMatchEntity(userKey string) Entity {
	if len(s.entities) == 0 {
		return Entity{}
	}
	type scored struct {
		entity Entity
		ratio  float64
	}
	ratios := make([]scored, len(s.entities))
	user := strings.Split(userKey, "")
	for i, e := range s.entities {
		ratio := 1.0
		if !strings.HasPrefix(e.Name, userKey) {
			ratio = difflib.NewMatcher(user, strings.Split(e.Name, "")).QuickRatio()
		}
		ratios[i] = scored{entity: e, ratio: ratio}
	}
	slices.SortStableFunc(ratios, func(a, b scored) int {
		return cmp.Compare(a.ratio, b.ratio)
	})
	return ratios[len(ratios)-1].entity
}

// FuzzyMatchEntityKey is FuzzyMatchEntity returning the canonical key.
func (s *Schema) FuzzyMatchEntityKey(userKey string) string {
	return s.FuzzyMatchEntity(userKey).Key
}

// CanonicalKey returns userKey if it already is a canonical key, else the
// fuzzy-corrected key.
func (s *Schema) CanonicalKey(userKey string) string {
	if _, ok := s.byKey[userKey]; ok {
		return userKey
	}
	return s.FuzzyMatchEntityKey(userKey)
}
