package message

import (
	"strings"

	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/pkg/errors"
)

const delimiter = "|"

// Message announces one stored image: <class>|<identifier>|<file name>.
type Message struct {
	Class string
	ID    string
	File  string
}

func NewMessage(raw string) (*Message, error) {
	tokens := strings.Split(raw, delimiter)
	if len(tokens) != 3 {
		return nil, errors.New("invalid message raw input (len)")
	}

	if _, err := record.Subdir(tokens[0]); err != nil {
		return nil, errors.Wrap(err, "invalid message raw input (class)")
	}

	if tokens[1] == "" || tokens[2] == "" {
		return nil, errors.New("invalid message raw input (empty token)")
	}

	return &Message{
		Class: tokens[0],
		ID:    tokens[1],
		File:  tokens[2],
	}, nil
}

func (m *Message) String() string {
	return strings.Join([]string{m.Class, m.ID, m.File}, delimiter)
}
