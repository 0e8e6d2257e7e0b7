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

	"github.com/uptrace/bun"

	"github.com/tomoncle/accounts/models"
)

// UserRepository adds username lookup and the favorite-profile view.
type UserRepository interface {
	Repository[models.User, models.UserIn]

	// GetByUsername matches username exactly as stored, among enabled users.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetFavProfiles returns the enabled favorite profiles of an enabled user,
	// or nil, nil when the user does not exist or is disabled.
	GetFavProfiles(ctx context.Context, userID string) ([]*models.Profile, error)
}

type userRepositoryImpl struct {
	Repository[models.User, models.UserIn]
	db bun.IDB
}

func NewUserRepository(db bun.IDB) UserRepository {
	return &userRepositoryImpl{
		Repository: NewRepository[models.User, models.UserIn](db),
		db:         db,
	}
}

func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.username = ?", username).
		Where("?TableAlias.enabled = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepositoryImpl) GetFavProfiles(ctx context.Context, userID string) ([]*models.Profile, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Relation("Profiles", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.favorite = ?", true).
				Where("?TableAlias.enabled = ?", true).
				OrderExpr("?TableAlias.created_at ASC")
		}).
		Where("?TableAlias.id = ?", userID).
		Where("?TableAlias.enabled = ?", true).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Profiles == nil {
		return []*models.Profile{}, nil
	}
	return user.Profiles, nil
}
