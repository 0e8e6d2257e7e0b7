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

const (
	ProfileFieldName        types.Field = "name"
	ProfileFieldDescription types.Field = "description"
	ProfileFieldUserID      types.Field = "user_id"
	ProfileFieldFavorite    types.Field = "favorite"
)

type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`
	TableBase

	Name        string `bun:"name,notnull,type:varchar(255)" json:"name"`
	Description string `bun:"description" json:"description"`
	UserID      string `bun:"user_id,notnull,type:varchar(36)" json:"user_id"`
	Favorite    bool   `bun:"favorite,notnull" json:"favorite"`
}

// ProfileIn is the write payload for profiles.
type ProfileIn struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1024"`
	UserID      string `json:"user_id" validate:"required,uuid"`
	Favorite    bool   `json:"favorite"`
}

func (in ProfileIn) Model() *Profile {
	return &Profile{
		Name:        in.Name,
		Description: in.Description,
		UserID:      in.UserID,
		Favorite:    in.Favorite,
	}
}

func (in ProfileIn) Columns() []string {
	return []string{
		string(ProfileFieldName),
		string(ProfileFieldDescription),
		string(ProfileFieldUserID),
		string(ProfileFieldFavorite),
	}
}
