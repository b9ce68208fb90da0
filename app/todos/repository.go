package todos

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/providers"
)

// ErrNotFound is returned when no todo has the requested id.
var ErrNotFound = errors.New("todo not found")

// Repository reads and writes todos.
type Repository struct {
	db  bun.IDB
	now func() time.Time
}

// NewRepository returns a Repository over db.
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db, now: utcNow}
}

// Init satisfies container.Initializer: the repository is built by the
// container from "database.connection".
func (r *Repository) Init(res container.Resolver) error {
	db, err := providers.DB(res)
	if err != nil {
		return err
	}
	*r = *NewRepository(db)
	return nil
}

// List returns open todos before done ones, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	err := r.db.NewSelect().
		Model(&todos).
		OrderExpr("t.done ASC, t.updated DESC, t.id DESC").
		Scan(ctx)
	return todos, err
}

// Create inserts a new open todo.
func (r *Repository) Create(ctx context.Context, text string) (*Todo, error) {
	now := r.now()
	todo := &Todo{Text: text, Created: now, Updated: now}
	if _, err := r.db.NewInsert().Model(todo).Exec(ctx); err != nil {
		return nil, err
	}
	return todo, nil
}

// UpdateText rewords a todo.
func (r *Repository) UpdateText(ctx context.Context, id int64, text string) error {
	return r.update(ctx, id, "text = ?", text)
}

// Check marks a todo as done.
func (r *Repository) Check(ctx context.Context, id int64) error {
	return r.update(ctx, id, "done = ?", true)
}

// Uncheck marks a todo as open again.
func (r *Repository) Uncheck(ctx context.Context, id int64) error {
	return r.update(ctx, id, "done = ?", false)
}

// Delete removes a todo.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res)
}

// update sets one column and touches updated.
func (r *Repository) update(ctx context.Context, id int64, set string, value any) error {
	res, err := r.db.NewUpdate().
		Model((*Todo)(nil)).
		Set(set, value).
		Set("updated = ?", r.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func utcNow() time.Time { return time.Now().UTC() }
