package todos

import (
	"errors"
	"strconv"

	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
	"github.com/km-arc/go-scoped/framework/http/validation"
)

// Names this module binds.
const (
	RepositoryKey = "todos.repository"
	SerializerKey = "todos.serializer"
)

// List handles GET /todos.
func List(r container.Resolver, req *gohttp.Request, _ *gohttp.Response) (any, error) {
	repo, err := container.Get[*Repository](r, RepositoryKey)
	if err != nil {
		return nil, err
	}
	serialize, err := container.Get[Serializer](r, SerializerKey)
	if err != nil {
		return nil, err
	}

	todos, err := repo.List(req.Context())
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(todos))
	for _, t := range todos {
		views = append(views, serialize(t))
	}
	return views, nil
}

// Create handles POST /todos with {"text": "..."}.
func Create(r container.Resolver, req *gohttp.Request, _ *gohttp.Response) (any, error) {
	repo, err := container.Get[*Repository](r, RepositoryKey)
	if err != nil {
		return nil, err
	}
	fields, err := req.Fields()
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(fields, validation.Rules{"text": "required|string"}); err != nil {
		return nil, err
	}

	_, err = repo.Create(req.Context(), fields["text"].(string))
	return nil, err
}

// Update handles PUT /todos/{id}. A "text" field rewords the todo; otherwise a
// "done" field checks or unchecks it.
func Update(r container.Resolver, req *gohttp.Request, _ *gohttp.Response) (any, error) {
	repo, err := container.Get[*Repository](r, RepositoryKey)
	if err != nil {
		return nil, err
	}
	id, err := todoID(req)
	if err != nil {
		return nil, err
	}
	fields, err := req.Fields()
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(fields, validation.Rules{"text": "string", "done": "boolean"}); err != nil {
		return nil, err
	}

	ctx := req.Context()
	if text, ok := fields["text"].(string); ok {
		return nil, notFound(repo.UpdateText(ctx, id, text), id)
	}

	done, ok := fields["done"].(bool)
	switch {
	case !ok:
		return nil, nil
	case done:
		err = repo.Check(ctx, id)
	default:
		err = repo.Uncheck(ctx, id)
	}
	return nil, notFound(err, id)
}

// Delete handles DELETE /todos/{id}.
func Delete(r container.Resolver, req *gohttp.Request, _ *gohttp.Response) (any, error) {
	repo, err := container.Get[*Repository](r, RepositoryKey)
	if err != nil {
		return nil, err
	}
	id, err := todoID(req)
	if err != nil {
		return nil, err
	}
	return nil, notFound(repo.Delete(req.Context(), id), id)
}

func todoID(req *gohttp.Request) (int64, error) {
	id, err := strconv.ParseInt(req.RouteParam("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, gohttp.BadRequest("invalid todo id %q", req.RouteParam("id"))
	}
	return id, nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return gohttp.NotFound("todo %d", id)
	}
	return err
}
