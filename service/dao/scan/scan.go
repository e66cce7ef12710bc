// Package scan tokenizes the whitespace separated text formats of program and
// simulation files.
package scan

import (
	"fmt"
	"strconv"

	"github.com/viant/parsly"
)

// Scanner reads integers and words from a parsly cursor
type Scanner struct {
	cursor *parsly.Cursor
}

// Int reads the next integer
func (s *Scanner) Int() (int, error) {
	matched := s.cursor.MatchAfterOptional(whitespaceToken, numberToken)
	if matched.Code != numberToken.Code {
		return 0, s.cursor.NewError(numberToken)
	}
	text := matched.Text(s.cursor)
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return value, nil
}

// Uint reads the next non negative integer
func (s *Scanner) Uint() (int, error) {
	value, err := s.Int()
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("expected non negative number, got %d", value)
	}
	return value, nil
}

// Word reads the next whitespace delimited word
func (s *Scanner) Word() (string, error) {
	matched := s.cursor.MatchAfterOptional(whitespaceToken, wordToken)
	if matched.Code != wordToken.Code {
		return "", s.cursor.NewError(wordToken)
	}
	return matched.Text(s.cursor), nil
}

// More reports whether anything but whitespace remains
func (s *Scanner) More() bool {
	s.cursor.MatchOne(whitespaceToken)
	return s.cursor.Pos < s.cursor.InputSize
}

// New creates a scanner over data; name is used in error messages
func New(name string, data []byte) *Scanner {
	return &Scanner{cursor: parsly.NewCursor(name, data, 0)}
}
