package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanner(t *testing.T) {
	scanner := New("test", []byte("  12 -3\n\talloc  input/proc/p0\r\n7"))

	value, err := scanner.Int()
	assert.NoError(t, err)
	assert.Equal(t, 12, value)

	value, err = scanner.Int()
	assert.NoError(t, err)
	assert.Equal(t, -3, value)

	_, err = scanner.Uint()
	assert.Error(t, err)
}

func TestScanner_Sequence(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expectWords []string
		expectInt   int
		expectErr   bool
	}{
		{description: "words then int", input: "calc alloc 5", expectWords: []string{"calc", "alloc"}, expectInt: 5},
		{description: "path word", input: "p0s\n0", expectWords: []string{"p0s"}, expectInt: 0},
		{description: "number glued to word", input: "x 5a", expectWords: []string{"x"}, expectErr: true},
		{description: "missing int", input: "x ", expectWords: []string{"x"}, expectErr: true},
	}

	for _, tc := range testCases {
		scanner := New(tc.description, []byte(tc.input))
		for _, expect := range tc.expectWords {
			word, err := scanner.Word()
			assert.NoError(t, err, tc.description)
			assert.Equal(t, expect, word, tc.description)
		}
		value, err := scanner.Int()
		if tc.expectErr {
			assert.Error(t, err, tc.description)
			continue
		}
		assert.NoError(t, err, tc.description)
		assert.Equal(t, tc.expectInt, value, tc.description)
		assert.False(t, scanner.More(), tc.description)
	}
}
