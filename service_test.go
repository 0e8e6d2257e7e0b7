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

package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/tomoncle/accounts"
	"github.com/tomoncle/accounts/database/dbtest"
	"github.com/tomoncle/accounts/models"
	"github.com/tomoncle/accounts/types"
	"github.com/tomoncle/accounts/uow"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	service accounts.Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.service = accounts.NewService(uow.NewSessionFactory(uow.Static(dbtest.New(s.T())), nil))
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) createUser(username string) *models.User {
	user, err := s.service.CreateUser(s.ctx, models.UserIn{Username: username, Password: "x"})
	s.Require().NoError(err)
	return user
}

func (s *ServiceTestSuite) TestUserLifecycle() {
	user := s.createUser("a@b.com")
	assert.NotEmpty(s.T(), user.ID)
	assert.True(s.T(), user.Enabled)

	got, err := s.service.GetUser(s.ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.Username, got.Username)

	require.NoError(s.T(), s.service.DeleteUser(s.ctx, user.ID))

	_, err = s.service.GetUser(s.ctx, user.ID)
	assert.ErrorIs(s.T(), err, accounts.ErrNotFound)
	assert.EqualError(s.T(), err, `user "`+user.ID+`" not found`)

	users, err := s.service.ListUsers(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), users)

	assert.ErrorIs(s.T(), s.service.DeleteUser(s.ctx, user.ID), accounts.ErrNotFound)
}

func (s *ServiceTestSuite) TestCreateUser_NormalizesUsername() {
	user := s.createUser("  A@B.Com ")

	assert.Equal(s.T(), "a@b.com", user.Username)

	got, err := s.service.GetUserByUsername(s.ctx, "A@b.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, got.ID)
}

func (s *ServiceTestSuite) TestCreateUser_UsernameTaken() {
	s.createUser("a@b.com")

	_, err := s.service.CreateUser(s.ctx, models.UserIn{Username: " A@B.com", Password: "y"})
	assert.ErrorIs(s.T(), err, accounts.ErrUsernameTaken)

	users, err := s.service.ListUsers(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 1)
}

func (s *ServiceTestSuite) TestCreateUser_NameOfDeletedUserIsFree() {
	old := s.createUser("a@b.com")
	require.NoError(s.T(), s.service.DeleteUser(s.ctx, old.ID))

	user := s.createUser("a@b.com")

	assert.NotEqual(s.T(), old.ID, user.ID)
}

func (s *ServiceTestSuite) TestCreateUser_InvalidInput() {
	tcs := map[string]models.UserIn{
		"not-an-email":     {Username: "alice", Password: "x"},
		"missing-password": {Username: "a@b.com"},
		"missing-username": {Password: "x"},
	}

	for name, in := range tcs {
		s.Run(name, func() {
			_, err := s.service.CreateUser(s.ctx, in)

			assert.ErrorIs(s.T(), err, accounts.ErrInvalidInput)
			var verrs validator.ValidationErrors
			assert.True(s.T(), errors.As(err, &verrs))
		})
	}
}

func (s *ServiceTestSuite) TestUpdateUser() {
	first := s.createUser("a@b.com")
	second := s.createUser("c@d.com")

	_, err := s.service.UpdateUser(s.ctx, second.ID, models.UserIn{Username: "A@B.COM", Password: "x"})
	assert.ErrorIs(s.T(), err, accounts.ErrUsernameTaken)

	same, err := s.service.UpdateUser(s.ctx, first.ID, models.UserIn{Username: "a@b.com", Password: "new"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new", same.Password)

	renamed, err := s.service.UpdateUser(s.ctx, second.ID, models.UserIn{Username: "new@b.com", Password: "x"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "new@b.com", renamed.Username)
}

func (s *ServiceTestSuite) TestUpdateUser_Deleted() {
	user := s.createUser("a@b.com")
	require.NoError(s.T(), s.service.DeleteUser(s.ctx, user.ID))

	_, err := s.service.UpdateUser(s.ctx, user.ID, models.UserIn{Username: "new@b.com", Password: "x"})

	assert.ErrorIs(s.T(), err, accounts.ErrNotFound)
}

func (s *ServiceTestSuite) TestPageUsers() {
	s.createUser("b@x.com")
	s.createUser("a@x.com")

	page, err := s.service.PageUsers(s.ctx, types.NewPageRequest(1, 1, nil, types.Asc(models.UserFieldUsername)))

	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, page.Total)
	require.Len(s.T(), page.Items, 1)
	assert.Equal(s.T(), "a@x.com", page.Items[0].Username)
}

func (s *ServiceTestSuite) TestListUsers_InvalidFilter() {
	_, err := s.service.ListUsers(s.ctx, types.Filters{"nonexistent_field": 1})

	assert.ErrorIs(s.T(), err, types.ErrInvalidFilter)
}

func (s *ServiceTestSuite) TestProfiles() {
	user := s.createUser("a@b.com")

	home, err := s.service.CreateProfile(s.ctx, models.ProfileIn{Name: "home", UserID: user.ID, Favorite: true})
	require.NoError(s.T(), err)
	work, err := s.service.CreateProfile(s.ctx, models.ProfileIn{Name: "work", UserID: user.ID})
	require.NoError(s.T(), err)

	favs, err := s.service.FavoriteProfiles(s.ctx, user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), favs, 1)
	assert.Equal(s.T(), home.ID, favs[0].ID)

	work, err = s.service.UpdateProfile(s.ctx, work.ID, models.ProfileIn{Name: "office", UserID: user.ID, Favorite: true})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "office", work.Name)

	favs, err = s.service.FavoriteProfiles(s.ctx, user.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), favs, 2)

	require.NoError(s.T(), s.service.DeleteProfile(s.ctx, home.ID))
	_, err = s.service.GetProfile(s.ctx, home.ID)
	assert.ErrorIs(s.T(), err, accounts.ErrNotFound)

	profiles, err := s.service.ListProfiles(s.ctx, types.Filters{models.ProfileFieldUserID: user.ID})
	require.NoError(s.T(), err)
	require.Len(s.T(), profiles, 1)
	assert.Equal(s.T(), work.ID, profiles[0].ID)
}

func (s *ServiceTestSuite) TestCreateProfile_MissingUser() {
	missing := uuid.NewString()

	_, err := s.service.CreateProfile(s.ctx, models.ProfileIn{Name: "home", UserID: missing})

	assert.ErrorIs(s.T(), err, accounts.ErrNotFound)
	profiles, err := s.service.ListProfiles(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), profiles)
}

func (s *ServiceTestSuite) TestUpdateProfile_MoveToDeletedUser() {
	owner := s.createUser("a@b.com")
	gone := s.createUser("c@d.com")
	require.NoError(s.T(), s.service.DeleteUser(s.ctx, gone.ID))
	profile, err := s.service.CreateProfile(s.ctx, models.ProfileIn{Name: "home", UserID: owner.ID})
	require.NoError(s.T(), err)

	_, err = s.service.UpdateProfile(s.ctx, profile.ID, models.ProfileIn{Name: "home", UserID: gone.ID})

	assert.ErrorIs(s.T(), err, accounts.ErrNotFound)
	got, err := s.service.GetProfile(s.ctx, profile.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), owner.ID, got.UserID)
}

func (s *ServiceTestSuite) TestFavoriteProfiles_MissingUser() {
	_, err := s.service.FavoriteProfiles(s.ctx, uuid.NewString())

	assert.ErrorIs(s.T(), err, accounts.ErrNotFound)
}
