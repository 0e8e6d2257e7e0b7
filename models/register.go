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

import "github.com/tomoncle/accounts/database"

func init() {
	database.RegisterModel((*User)(nil), 10)
	database.RegisterModel((*Profile)(nil), 20)

	// usernames are unique among enabled users, a deleted user frees its name
	database.RegisterIndex(database.IndexDefinition{
		Model:   (*User)(nil),
		Name:    "uq_users_username_enabled",
		Columns: []string{string(UserFieldUsername)},
		Unique:  true,
		Where:   string(FieldEnabled),
	})
	database.RegisterIndex(database.IndexDefinition{
		Model:   (*Profile)(nil),
		Name:    "idx_profiles_user_id",
		Columns: []string{string(ProfileFieldUserID)},
	})

	database.RegisterForeignKey(database.ForeignKeyConstraint{
		Table:           "profiles",
		Column:          string(ProfileFieldUserID),
		ReferenceTable:  "users",
		ReferenceColumn: string(FieldID),
		OnDelete:        "RESTRICT",
	})
}
