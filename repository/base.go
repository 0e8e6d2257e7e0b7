/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"slices"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/accounts/types"
)

const (
	columnEnabled   = "enabled"
	columnUpdatedAt = "updated_at"
)

type baseRepositoryImpl[T any, U Record[T]] struct {
	db bun.IDB
}

// NewRepository returns a generic repository bound to db.
func NewRepository[T any, U Record[T]](db bun.IDB) Repository[T, U] {
	return &baseRepositoryImpl[T, U]{db: db}
}

func (r *baseRepositoryImpl[T, U]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T, U]) table() *schema.Table {
	return r.db.Dialect().Tables().Get(reflect.TypeFor[T]())
}

func (r *baseRepositoryImpl[T, U]) GetByID(ctx context.Context, id string) (*T, error) {
	entity := new(T)
	err := r.db.NewSelect().
		Model(entity).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.enabled = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T, U]) List(ctx context.Context, filters types.Filters) ([]*T, error) {
	entities := make([]*T, 0)
	query, err := r.filtered(r.db.NewSelect().Model(&entities), filters)
	if err != nil {
		return nil, err
	}
	if err := query.OrderExpr("?TableAlias.created_at ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T, U]) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error) {
	if req == nil {
		req = types.NewDefaultPageRequest(1, 0)
	}
	table := r.table()
	for _, order := range req.GetOrders() {
		if err := types.ValidateField(table, order.Field); err != nil {
			return nil, err
		}
	}

	entities := make([]*T, 0)
	query, err := r.filtered(r.db.NewSelect().Model(&entities), req.GetFilters())
	if err != nil {
		return nil, err
	}

	pagination := types.NewDefaultPagination[T](req.GetPage(), req.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	for _, order := range req.GetOrders() {
		query = query.OrderExpr("?TableAlias.? "+order.Direction(), bun.Ident(order.Field))
	}
	err = query.
		OrderExpr("?TableAlias.id ASC").
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

// filtered validates filters against T's table and ANDs them, in field order,
// with enabled = TRUE.
func (r *baseRepositoryImpl[T, U]) filtered(query *bun.SelectQuery, filters types.Filters) (*bun.SelectQuery, error) {
	if err := filters.Validate(r.table()); err != nil {
		return nil, err
	}
	query = query.Where("?TableAlias.enabled = ?", true)
	for _, field := range filters.Fields() {
		value := filters[field]
		if value == nil {
			query = query.Where("?TableAlias.? IS NULL", bun.Ident(field))
			continue
		}
		query = query.Where("?TableAlias.? = ?", bun.Ident(field), value)
	}
	return query, nil
}

func (r *baseRepositoryImpl[T, U]) Add(ctx context.Context, record U) (*T, error) {
	entity := record.Model()
	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T, U]) Update(ctx context.Context, id string, record U) (*T, error) {
	entity := record.Model()
	res, err := r.db.NewUpdate().
		Model(entity).
		Column(slices.Concat(record.Columns(), []string{columnUpdatedAt})...).
		Where("id = ?", id).
		Where("enabled = ?", true).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *baseRepositoryImpl[T, U]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model(new(T)).
		Set("? = ?", bun.Ident(columnEnabled), false).
		Set("? = ?", bun.Ident(columnUpdatedAt), time.Now().UTC()).
		Where("id = ?", id).
		Where("enabled = ?", true).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
