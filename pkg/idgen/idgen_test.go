package idgen

import (
	"regexp"
	"testing"
)

func TestGroupID_Format(t *testing.T) {
	re := regexp.MustCompile(`^GRP-\d{13}-[0-9a-z]{5}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GroupID()
		if !re.MatchString(id) {
			t.Fatalf("分组标识格式不符: %s", id)
		}
		if seen[id] {
			t.Fatalf("分组标识重复: %s", id)
		}
		seen[id] = true
	}
}
