// Copyright 2025 Edgaze
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auth

import (
	"context"
	"database/sql"
	"fmt"
)

// AdminChecker answers whether a user holds an operator role.
type AdminChecker struct {
	db *sql.DB
}

// NewAdminChecker creates an admin checker backed by the admin_roles table.
func NewAdminChecker(db *sql.DB) *AdminChecker {
	return &AdminChecker{db: db}
}

// IsAdmin reports whether the user has an admin_roles row.
func (c *AdminChecker) IsAdmin(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM admin_roles WHERE user_id = $1)`

	var isAdmin bool
	if err := c.db.QueryRowContext(ctx, query, userID).Scan(&isAdmin); err != nil {
		return false, fmt.Errorf("failed to check admin role: %w", err)
	}

	return isAdmin, nil
}
