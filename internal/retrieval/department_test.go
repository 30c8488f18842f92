package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepartmentBoost(t *testing.T) {
	tests := []struct {
		name       string
		department string
		text       string
		broad      bool
		want       int
	}{
		{"unknown_department", "Astrology", "finance accounting", true, 0},
		{"no_keyword_hit", "Finance", "pottery for beginners", false, 0},
		{"single_hit", "Finance", "Intro to accounting", false, 2},
		{"multiple_hits", "finance", "accounting and budget basics", false, 4},
		{"broad_amplifies", "Finance", "Intro to accounting", true, 6},
		{"case_and_whitespace", "  ENGINEERING ", "Secure coding", false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, departmentBoost(tt.department, tt.text, tt.broad))
		})
	}
}

func TestIsBroadQuery(t *testing.T) {
	assert.True(t, isBroadQuery(TokenizeQuery("recommend a course")))
	assert.True(t, isBroadQuery(TokenizeQuery("what should I take next")))
	assert.False(t, isBroadQuery(TokenizeQuery("advanced kubernetes networking security deep dive")))
}
