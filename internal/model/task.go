package model

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`
}

// TaskInput is the body of create and update requests.
// A nil Title means the key was absent or null.
type TaskInput struct {
	Title *string `json:"title"`
}

// UnmarshalJSON only looks at the exact "title" key. The default struct
// decoding would also accept "Title" or "TITLE".
func (in *TaskInput) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	in.Title = nil
	raw, ok := fields["title"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return err
	}
	in.Title = &title
	return nil
}
