package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery_Clamping(t *testing.T) {
	cases := []struct {
		name                 string
		limit, offset        int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, 0, 10, 0},
		{"limit too big", 999, 0, 50, 0},
		{"negative limit", -5, 0, 1, 0},
		{"offset at cap", 50, 1000, 50, 1000},
		{"offset too big", 10, 5000, 10, 1000},
		{"negative offset", 10, -1, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewQuery("hello", tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, q.Limit)
			assert.Equal(t, tc.wantOffset, q.Offset)
		})
	}
}

func TestNewQuery_TrimsAndRejectsEmpty(t *testing.T) {
	q, err := NewQuery("  hello world  ", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", q.Text)

	_, err = NewQuery("   ", 10, 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestNewResult_NeverNilResults(t *testing.T) {
	q, _ := NewQuery("x", 0, 0)
	r := NewResult(ModeTrigram, q, nil, nil)
	assert.NotNil(t, r.Results)
	assert.Equal(t, 0, r.Count)
	assert.Nil(t, r.Total)
}
