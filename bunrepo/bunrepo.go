// Package bunrepo adapts a go-repository-bun Repository to the access point
// contract so SQL tables can sit behind the cache decorator.
//
// Records are converted to item fields through their JSON representation;
// only fields declared in the schema are kept.
package bunrepo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
)

var _ accesspoint.AccessPoint = (*AccessPoint[any])(nil)

// AccessPoint exposes a Repository[T] as an access point.
type AccessPoint[T any] struct {
	repo       repository.Repository[T]
	properties accesspoint.Schema
	identity   []string
}

// New wraps repo. Identity names must be declared in schema and should match
// the primary key columns of the model.
func New[T any](repo repository.Repository[T], schema accesspoint.Schema, identity ...string) (*AccessPoint[T], error) {
	if repo == nil {
		return nil, fmt.Errorf("bunrepo: repository is required")
	}
	if len(identity) == 0 {
		return nil, fmt.Errorf("bunrepo: at least one identity property is required")
	}
	for _, name := range identity {
		if _, ok := schema[name]; !ok {
			return nil, fmt.Errorf("bunrepo: identity property %q is not declared", name)
		}
	}
	return &AccessPoint[T]{
		repo:       repo,
		properties: schema,
		identity:   slices.Clone(identity),
	}, nil
}

func (a *AccessPoint[T]) Properties() accesspoint.Schema {
	return a.properties
}

func (a *AccessPoint[T]) IdentityProperties() []string {
	return slices.Clone(a.identity)
}

// Search lists the records matching criteria, one equality clause per field.
func (a *AccessPoint[T]) Search(ctx context.Context, criteria accesspoint.Criteria) (iter.Seq[*accesspoint.Item], error) {
	filter, err := a.properties.Coerce(criteria)
	if err != nil {
		return nil, err
	}

	records, _, err := a.repo.List(ctx, selectCriteria(accesspoint.Criteria(filter))...)
	if err != nil {
		return nil, backendError(err)
	}

	items := make([]*accesspoint.Item, 0, len(records))
	for _, record := range records {
		fields, err := a.toFields(record)
		if err != nil {
			return nil, err
		}
		items = append(items, accesspoint.NewItem(a, fields))
	}
	return accesspoint.Values(items), nil
}

func (a *AccessPoint[T]) Open(ctx context.Context, criteria accesspoint.Criteria) (*accesspoint.Item, error) {
	return accesspoint.OpenOne(ctx, a, criteria)
}

func (a *AccessPoint[T]) Create(fields map[string]any) (*accesspoint.Item, error) {
	if err := a.properties.Validate(fields); err != nil {
		return nil, err
	}
	coerced, err := a.properties.Coerce(fields)
	if err != nil {
		return nil, err
	}
	return accesspoint.NewItem(a, coerced), nil
}

// Save upserts the record built from the item fields.
func (a *AccessPoint[T]) Save(ctx context.Context, item *accesspoint.Item) error {
	record, err := a.recordOf(item, a.identity...)
	if err != nil {
		return err
	}
	if _, err := a.repo.Upsert(ctx, record); err != nil {
		return backendError(err)
	}
	return nil
}

func (a *AccessPoint[T]) Delete(ctx context.Context, item *accesspoint.Item) error {
	record, err := a.recordOf(item, a.identity...)
	if err != nil {
		return err
	}
	if err := a.repo.Delete(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %v", accesspoint.ErrItemDoesNotExist, item.Identity())
		}
		return backendError(err)
	}
	return nil
}

func (a *AccessPoint[T]) DeleteMany(ctx context.Context, criteria accesspoint.Criteria) error {
	filter, err := a.properties.Coerce(criteria)
	if err != nil {
		return err
	}
	if err := a.repo.DeleteMany(ctx, deleteCriteria(accesspoint.Criteria(filter))...); err != nil {
		return backendError(err)
	}
	return nil
}

func (a *AccessPoint[T]) recordOf(item *accesspoint.Item, required ...string) (T, error) {
	var zero T
	fields := item.Fields()
	if err := a.properties.Validate(fields, required...); err != nil {
		return zero, err
	}
	coerced, err := a.properties.Coerce(fields)
	if err != nil {
		return zero, err
	}
	return toRecord[T](coerced)
}

// toFields keeps the declared fields of the record's JSON form.
func (a *AccessPoint[T]) toFields(record T) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("bunrepo: encode %T: %w", record, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bunrepo: decode %T: %w", record, err)
	}

	fields := make(map[string]any, len(a.properties))
	for name, prop := range a.properties {
		v, ok := raw[name]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && prop.Type == accesspoint.TypeTime {
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("bunrepo: %s: %w", name, err)
			}
			v = ts
		}
		fields[name] = v
	}
	return a.properties.Coerce(fields)
}

func toRecord[T any](fields map[string]any) (T, error) {
	var record T
	data, err := json.Marshal(fields)
	if err != nil {
		return record, fmt.Errorf("bunrepo: encode fields: %w", err)
	}

	if rt := reflect.TypeOf(record); rt != nil && rt.Kind() == reflect.Pointer {
		record = reflect.New(rt.Elem()).Interface().(T)
		err = json.Unmarshal(data, record)
	} else {
		err = json.Unmarshal(data, &record)
	}
	if err != nil {
		return record, fmt.Errorf("bunrepo: decode into %T: %w", record, err)
	}
	return record, nil
}

func selectCriteria(criteria accesspoint.Criteria) []repository.SelectCriteria {
	conditions := criteria.Normalize()
	out := make([]repository.SelectCriteria, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.? = ?", bun.Ident(c.Field), c.Value)
		})
	}
	return out
}

// deleteCriteria always yields at least one clause; bun refuses a DELETE
// without WHERE and an empty criteria means every row.
func deleteCriteria(criteria accesspoint.Criteria) []repository.DeleteCriteria {
	conditions := criteria.Normalize()
	if len(conditions) == 0 {
		return []repository.DeleteCriteria{func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("1 = 1")
		}}
	}
	out := make([]repository.DeleteCriteria, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("?TableAlias.? = ?", bun.Ident(c.Field), c.Value)
		})
	}
	return out
}

// backendError marks connection failures as ErrBackendUnavailable and
// returns anything else unchanged.
func backendError(err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", accesspoint.ErrBackendUnavailable, err)
	}
	return err
}
