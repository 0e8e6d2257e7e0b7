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

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/bun"

	"github.com/tomoncle/accounts/database"
	"github.com/tomoncle/accounts/database/dbtest"
	"github.com/tomoncle/accounts/models"
	"github.com/tomoncle/accounts/repository"
	"github.com/tomoncle/accounts/types"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx      context.Context
	db       *bun.DB
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.New(s.T())
	s.users = repository.NewUserRepository(s.db)
	s.profiles = repository.NewProfileRepository(s.db)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) addUser(username string) *models.User {
	user, err := s.users.Add(s.ctx, models.UserIn{Username: username, Password: "x"})
	s.Require().NoError(err)
	return user
}

func (s *RepositoryTestSuite) addProfile(userID, name string, favorite bool) *models.Profile {
	profile, err := s.profiles.Add(s.ctx, models.ProfileIn{Name: name, UserID: userID, Favorite: favorite})
	s.Require().NoError(err)
	return profile
}

func (s *RepositoryTestSuite) TestAdd_PopulatesGeneratedFields() {
	user := s.addUser("a@b.com")

	assert.NotEmpty(s.T(), user.ID)
	assert.True(s.T(), user.Enabled)
	assert.False(s.T(), user.CreatedAt.IsZero())
	assert.Equal(s.T(), user.CreatedAt, user.UpdatedAt)
}

func (s *RepositoryTestSuite) TestAddThenGet() {
	added := s.addUser("a@b.com")

	got, err := s.users.GetByID(s.ctx, added.ID)

	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), added.ID, got.ID)
	assert.Equal(s.T(), added.Username, got.Username)
	assert.Equal(s.T(), added.Password, got.Password)
	assert.Equal(s.T(), added.Enabled, got.Enabled)
}

func (s *RepositoryTestSuite) TestGetByID_Missing() {
	got, err := s.users.GetByID(s.ctx, "00000000-0000-0000-0000-000000000000")

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *RepositoryTestSuite) TestSoftDelete() {
	user := s.addUser("a@b.com")
	other := s.addUser("c@d.com")

	deleted, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), deleted)

	got, err := s.users.GetByID(s.ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)

	list, err := s.users.List(s.ctx, nil)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), other.ID, list[0].ID)

	byName, err := s.users.GetByUsername(s.ctx, "a@b.com")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), byName)

	count, err := s.db.NewSelect().Model((*models.User)(nil)).Where("id = ?", user.ID).Count(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count, "row must still exist physically")
}

func (s *RepositoryTestSuite) TestDelete_Twice() {
	user := s.addUser("a@b.com")

	first, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)
	second, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)

	assert.True(s.T(), first)
	assert.False(s.T(), second)
}

func (s *RepositoryTestSuite) TestAdd_DuplicateEnabledUsername() {
	s.addUser("a@b.com")

	_, err := s.users.Add(s.ctx, models.UserIn{Username: "a@b.com", Password: "y"})

	require.Error(s.T(), err)
	assert.True(s.T(), database.IsDuplicateKey(err))
}

func (s *RepositoryTestSuite) TestAdd_UsernameFreedByDelete() {
	user := s.addUser("a@b.com")
	deleted, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), deleted)

	again := s.addUser("a@b.com")

	assert.NotEqual(s.T(), user.ID, again.ID)
}

func (s *RepositoryTestSuite) TestUpdate() {
	user := s.addUser("a@b.com")

	updated, err := s.users.Update(s.ctx, user.ID, models.UserIn{Username: "new@b.com", Password: "y"})

	require.NoError(s.T(), err)
	require.NotNil(s.T(), updated)
	assert.Equal(s.T(), user.ID, updated.ID)
	assert.Equal(s.T(), "new@b.com", updated.Username)
	assert.Equal(s.T(), "y", updated.Password)
	assert.True(s.T(), updated.Enabled)
	assert.False(s.T(), updated.UpdatedAt.Before(user.UpdatedAt.Truncate(time.Second)))
}

func (s *RepositoryTestSuite) TestUpdate_SoftDeletedReturnsNil() {
	user := s.addUser("a@b.com")
	_, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)

	updated, err := s.users.Update(s.ctx, user.ID, models.UserIn{Username: "new@b.com", Password: "x"})

	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated)

	var stored models.User
	require.NoError(s.T(), s.db.NewSelect().Model(&stored).Where("id = ?", user.ID).Scan(s.ctx))
	assert.Equal(s.T(), "a@b.com", stored.Username)
	assert.False(s.T(), stored.Enabled)
}

func (s *RepositoryTestSuite) TestUpdate_Missing() {
	updated, err := s.users.Update(s.ctx, "missing", models.UserIn{Username: "new@b.com", Password: "x"})

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), updated)
}

func (s *RepositoryTestSuite) TestList_Filters() {
	user := s.addUser("a@b.com")
	s.addProfile(user.ID, "home", true)
	s.addProfile(user.ID, "work", false)
	s.addProfile(s.addUser("c@d.com").ID, "home", true)

	tcs := map[string]struct {
		filters types.Filters
		want    []string
	}{
		"no-filters": {
			filters: nil,
			want:    []string{"home", "work", "home"},
		},
		"single-filter": {
			filters: types.Filters{models.ProfileFieldName: "work"},
			want:    []string{"work"},
		},
		"conjunction": {
			filters: types.Filters{models.ProfileFieldUserID: user.ID, models.ProfileFieldFavorite: true},
			want:    []string{"home"},
		},
		"no-match": {
			filters: types.Filters{models.ProfileFieldName: "gym"},
			want:    []string{},
		},
	}

	for name, tc := range tcs {
		s.Run(name, func() {
			list, err := s.profiles.List(s.ctx, tc.filters)
			require.NoError(s.T(), err)

			names := make([]string, 0, len(list))
			for _, p := range list {
				names = append(names, p.Name)
			}
			assert.ElementsMatch(s.T(), tc.want, names)
		})
	}
}

func (s *RepositoryTestSuite) TestList_InvalidFilter() {
	list, err := s.users.List(s.ctx, types.Filters{"nonexistent_field": 1})

	assert.ErrorIs(s.T(), err, types.ErrInvalidFilter)
	assert.Nil(s.T(), list)
}

func (s *RepositoryTestSuite) TestList_EnabledFilterCannotRevealDeleted() {
	user := s.addUser("a@b.com")
	_, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)

	list, err := s.users.List(s.ctx, types.Filters{models.FieldEnabled: false})

	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

func (s *RepositoryTestSuite) TestGetByUsername() {
	user := s.addUser("a@b.com")

	got, err := s.users.GetByUsername(s.ctx, "a@b.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), user.ID, got.ID)

	got, err = s.users.GetByUsername(s.ctx, "A@B.com")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *RepositoryTestSuite) TestGetFavProfiles() {
	user := s.addUser("a@b.com")
	home := s.addProfile(user.ID, "home", true)
	s.addProfile(user.ID, "work", false)
	gone := s.addProfile(user.ID, "old", true)
	_, err := s.profiles.Delete(s.ctx, gone.ID)
	require.NoError(s.T(), err)

	favs, err := s.users.GetFavProfiles(s.ctx, user.ID)

	require.NoError(s.T(), err)
	require.Len(s.T(), favs, 1)
	assert.Equal(s.T(), home.ID, favs[0].ID)
}

func (s *RepositoryTestSuite) TestGetFavProfiles_NoFavorites() {
	user := s.addUser("a@b.com")
	s.addProfile(user.ID, "work", false)

	favs, err := s.users.GetFavProfiles(s.ctx, user.ID)

	require.NoError(s.T(), err)
	assert.NotNil(s.T(), favs)
	assert.Empty(s.T(), favs)
}

func (s *RepositoryTestSuite) TestGetFavProfiles_DisabledUser() {
	user := s.addUser("a@b.com")
	s.addProfile(user.ID, "home", true)
	_, err := s.users.Delete(s.ctx, user.ID)
	require.NoError(s.T(), err)

	favs, err := s.users.GetFavProfiles(s.ctx, user.ID)

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), favs)
}

func (s *RepositoryTestSuite) TestPage() {
	for _, name := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		s.addUser(name)
	}

	page, err := s.users.Page(s.ctx, types.NewPageRequest(1, 2, nil, types.Asc(models.UserFieldUsername)))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, page.Total)
	assert.Equal(s.T(), 2, page.Pages())
	require.Len(s.T(), page.Items, 2)
	assert.Equal(s.T(), "a@x.com", page.Items[0].Username)
	assert.Equal(s.T(), "b@x.com", page.Items[1].Username)

	page, err = s.users.Page(s.ctx, types.NewPageRequest(2, 2, nil, types.Desc(models.UserFieldUsername)))
	require.NoError(s.T(), err)
	require.Len(s.T(), page.Items, 1)
	assert.Equal(s.T(), "a@x.com", page.Items[0].Username)
}

func (s *RepositoryTestSuite) TestPage_Empty() {
	page, err := s.users.Page(s.ctx, types.NewDefaultPageRequest(1, 10))

	require.NoError(s.T(), err)
	assert.Zero(s.T(), page.Total)
	assert.Empty(s.T(), page.Items)
}

func (s *RepositoryTestSuite) TestPage_InvalidOrder() {
	_, err := s.users.Page(s.ctx, types.NewPageRequest(1, 10, nil, types.Asc("password_hash")))

	assert.ErrorIs(s.T(), err, types.ErrInvalidFilter)
}
