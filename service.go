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

package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomoncle/accounts/database"
	"github.com/tomoncle/accounts/models"
	"github.com/tomoncle/accounts/types"
	"github.com/tomoncle/accounts/uow"
)

var defaultLogger = sync.OnceValue(func() database.Logger {
	return database.NewNamedLogger("ACCOUNTS")
})

// Service is the account API over users and their profiles. Every call runs
// in its own unit of work.
type Service interface {
	// CreateUser stores a user after normalizing its username. It fails with
	// ErrUsernameTaken when an enabled user already has the name.
	CreateUser(ctx context.Context, in models.UserIn) (*models.User, error)

	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername normalizes username before the lookup.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	ListUsers(ctx context.Context, filters types.Filters) ([]*models.User, error)

	PageUsers(ctx context.Context, req *types.PageRequest) (*types.Pagination[models.User], error)

	// UpdateUser replaces username and password. The uniqueness check
	// ignores the user being updated.
	UpdateUser(ctx context.Context, id string, in models.UserIn) (*models.User, error)

	// DeleteUser soft-deletes the user.
	DeleteUser(ctx context.Context, id string) error

	// FavoriteProfiles returns the user's enabled profiles marked favorite.
	FavoriteProfiles(ctx context.Context, userID string) ([]*models.Profile, error)

	// CreateProfile requires the owning user to exist and be enabled.
	CreateProfile(ctx context.Context, in models.ProfileIn) (*models.Profile, error)

	GetProfile(ctx context.Context, id string) (*models.Profile, error)

	ListProfiles(ctx context.Context, filters types.Filters) ([]*models.Profile, error)

	UpdateProfile(ctx context.Context, id string, in models.ProfileIn) (*models.Profile, error)

	DeleteProfile(ctx context.Context, id string) error
}

type serviceImpl struct {
	factory  uow.SessionFactory
	opts     []uow.Option
	validate *validator.Validate
	logger   database.Logger
}

// NewService returns a Service opening its units of work from factory. opts
// are passed to every unit of work.
func NewService(factory uow.SessionFactory, opts ...uow.Option) Service {
	return &serviceImpl{
		factory:  factory,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   defaultLogger(),
	}
}

func (s *serviceImpl) run(ctx context.Context, fn func(ctx context.Context, u *uow.UnitOfWork) error) error {
	return mapError(uow.WithUnitOfWork(ctx, s.factory, fn, s.opts...))
}

func (s *serviceImpl) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (s *serviceImpl) CreateUser(ctx context.Context, in models.UserIn) (*models.User, error) {
	in.Username = models.NormalizeUsername(in.Username)
	if err := s.check(in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		existing, err := u.Users.GetByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUsernameTaken
		}
		user, err = u.Users.Add(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User created", "id", user.ID)
	return user, nil
}

func (s *serviceImpl) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		user, err = u.Users.GetByID(ctx, id)
		if err == nil && user == nil {
			err = notFound("user", id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *serviceImpl) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	var user *models.User
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		user, err = u.Users.GetByUsername(ctx, username)
		if err == nil && user == nil {
			err = notFound("user", username)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *serviceImpl) ListUsers(ctx context.Context, filters types.Filters) ([]*models.User, error) {
	var users []*models.User
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		users, err = u.Users.List(ctx, filters)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *serviceImpl) PageUsers(ctx context.Context, req *types.PageRequest) (*types.Pagination[models.User], error) {
	var page *types.Pagination[models.User]
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		page, err = u.Users.Page(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *serviceImpl) UpdateUser(ctx context.Context, id string, in models.UserIn) (*models.User, error) {
	in.Username = models.NormalizeUsername(in.Username)
	if err := s.check(in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		existing, err := u.Users.GetByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != id {
			return ErrUsernameTaken
		}
		user, err = u.Users.Update(ctx, id, in)
		if err == nil && user == nil {
			err = notFound("user", id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("User updated", "id", id)
	return user, nil
}

func (s *serviceImpl) DeleteUser(ctx context.Context, id string) error {
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		deleted, err := u.Users.Delete(ctx, id)
		if err == nil && !deleted {
			err = notFound("user", id)
		}
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("User deleted", "id", id)
	return nil
}

func (s *serviceImpl) FavoriteProfiles(ctx context.Context, userID string) ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		profiles, err = u.Users.GetFavProfiles(ctx, userID)
		if err == nil && profiles == nil {
			err = notFound("user", userID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *serviceImpl) CreateProfile(ctx context.Context, in models.ProfileIn) (*models.Profile, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var profile *models.Profile
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		if err := requireUser(ctx, u, in.UserID); err != nil {
			return err
		}
		var err error
		profile, err = u.Profiles.Add(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Profile created", "id", profile.ID, "user_id", profile.UserID)
	return profile, nil
}

func (s *serviceImpl) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile *models.Profile
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		profile, err = u.Profiles.GetByID(ctx, id)
		if err == nil && profile == nil {
			err = notFound("profile", id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *serviceImpl) ListProfiles(ctx context.Context, filters types.Filters) ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		profiles, err = u.Profiles.List(ctx, filters)
		return err
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *serviceImpl) UpdateProfile(ctx context.Context, id string, in models.ProfileIn) (*models.Profile, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var profile *models.Profile
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		current, err := u.Profiles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound("profile", id)
		}
		if current.UserID != in.UserID {
			if err := requireUser(ctx, u, in.UserID); err != nil {
				return err
			}
		}
		profile, err = u.Profiles.Update(ctx, id, in)
		if err == nil && profile == nil {
			err = notFound("profile", id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Profile updated", "id", id)
	return profile, nil
}

func (s *serviceImpl) DeleteProfile(ctx context.Context, id string) error {
	err := s.run(ctx, func(ctx context.Context, u *uow.UnitOfWork) error {
		deleted, err := u.Profiles.Delete(ctx, id)
		if err == nil && !deleted {
			err = notFound("profile", id)
		}
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("Profile deleted", "id", id)
	return nil
}

func requireUser(ctx context.Context, u *uow.UnitOfWork, userID string) error {
	owner, err := u.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if owner == nil {
		return notFound("user", userID)
	}
	return nil
}
