// Package flash keeps the dashboard's transient notifications (the "toast"
// messages) in the session until the client pops them.
package flash

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devmarvs/pmboard/session"
)

// ErrSessionMissing indicates no session was supplied.
var ErrSessionMissing = errors.New("flash session missing")

// Key is the session value holding queued messages.
const Key = "flash"

// MaxMessages bounds the queue; the oldest messages are dropped first.
const MaxMessages = 10

// Message types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeWarning = "warning"
)

// Message is a single notification.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Add queues msg and saves the session.
func Add(w http.ResponseWriter, sess *session.Session, msg Message) error {
	if sess == nil {
		return ErrSessionMissing
	}
	messages, _ := decodeMessages(sess.Get(Key))
	messages = append(messages, msg)
	if len(messages) > MaxMessages {
		messages = messages[len(messages)-MaxMessages:]
	}

	encoded, err := encodeMessages(messages)
	if err != nil {
		return err
	}
	sess.Set(Key, encoded)
	return sess.Save(w)
}

// Success queues a success notification.
func Success(w http.ResponseWriter, sess *session.Session, text string) error {
	return Add(w, sess, Message{Type: TypeSuccess, Text: text})
}

// Error queues an error notification.
func Error(w http.ResponseWriter, sess *session.Session, text string) error {
	return Add(w, sess, Message{Type: TypeError, Text: text})
}

// Warning queues a warning notification.
func Warning(w http.ResponseWriter, sess *session.Session, text string) error {
	return Add(w, sess, Message{Type: TypeWarning, Text: text})
}

// Peek returns queued messages without clearing them.
func Peek(sess *session.Session) ([]Message, error) {
	if sess == nil {
		return nil, ErrSessionMissing
	}
	return decodeMessages(sess.Get(Key))
}

// Pop returns queued messages and clears them from the session. A corrupt
// queue is cleared as well.
func Pop(w http.ResponseWriter, sess *session.Session) ([]Message, error) {
	if sess == nil {
		return nil, ErrSessionMissing
	}
	value := sess.Get(Key)
	messages, decodeErr := decodeMessages(value)
	if value != "" {
		sess.Delete(Key)
		if saveErr := sess.Save(w); saveErr != nil {
			return nil, saveErr
		}
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

func encodeMessages(messages []Message) (string, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeMessages(value string) ([]Message, error) {
	if value == "" {
		return nil, nil
	}
	var messages []Message
	if err := json.Unmarshal([]byte(value), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
