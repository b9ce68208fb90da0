package todos

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Todo is one row of the todos table.
type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID      int64     `bun:"id,pk,autoincrement"`
	Text    string    `bun:"text,notnull"`
	Done    bool      `bun:"done,notnull"`
	Created time.Time `bun:"created,notnull"`
	Updated time.Time `bun:"updated,notnull"`
}

// The CHECK constraint rejects blank text at the storage level; the HTTP
// layer reports the violation as a 400.
const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	text    TEXT      NOT NULL CHECK (trim(text) <> ''),
	done    BOOLEAN   NOT NULL DEFAULT FALSE,
	created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// CreateSchema creates the todos table if it does not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// View is the JSON representation of a Todo.
type View struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Serializer converts a Todo to its View. Controllers resolve it as
// "todos.serializer" so it can be swapped per scope.
type Serializer func(Todo) View

// Serialize is the default Serializer.
func Serialize(t Todo) View {
	return View{ID: t.ID, Text: t.Text, Done: t.Done}
}
