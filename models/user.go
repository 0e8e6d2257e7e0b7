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

package models

import (
	"github.com/uptrace/bun"

	"github.com/tomoncle/accounts/types"
)

const UserFieldUsername types.Field = "username"

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	TableBase

	Username string     `bun:"username,notnull,type:varchar(255)" json:"username"`
	Password string     `bun:"password,notnull" json:"-"`
	Profiles []*Profile `bun:"rel:has-many,join:id=user_id" json:"profiles,omitempty"`
}

// UserIn is the write payload for users.
type UserIn struct {
	Username string `json:"username" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

func (in UserIn) Model() *User {
	return &User{Username: in.Username, Password: in.Password}
}

func (in UserIn) Columns() []string {
	return []string{string(UserFieldUsername), "password"}
}
