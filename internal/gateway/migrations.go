package gateway

import (
	"context"
	"fmt"
	"strings"
)

// migrationDDL is the schema bootstrap for the six tables the backend
// requires. The {pk} and {ts} tokens are substituted per dialect.
var migrationDDL = []string{
	`CREATE TABLE IF NOT EXISTS admin_users (
		id {pk},
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(32) NOT NULL DEFAULT 'admin',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at {ts} NULL,
		deactivated_at {ts} NULL,
		created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS destinations (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		location VARCHAR(255) NOT NULL DEFAULT '',
		category VARCHAR(64) NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		images TEXT,
		entrance_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		opening_hours VARCHAR(255) NOT NULL DEFAULT '',
		contact_number VARCHAR(64) NOT NULL DEFAULT '',
		website VARCHAR(255) NOT NULL DEFAULT '',
		amenities TEXT,
		accessibility_features TEXT,
		best_time_to_visit VARCHAR(255) NOT NULL DEFAULT '',
		duration VARCHAR(64) NOT NULL DEFAULT '',
		difficulty_level VARCHAR(16) NOT NULL DEFAULT 'Easy',
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count BIGINT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS delicacies (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		restaurant VARCHAR(255) NOT NULL DEFAULT '',
		location VARCHAR(255) NOT NULL DEFAULT '',
		category VARCHAR(64) NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		images TEXT,
		ingredients TEXT,
		contact_number VARCHAR(64) NOT NULL DEFAULT '',
		opening_hours VARCHAR(255) NOT NULL DEFAULT '',
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count BIGINT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) UNIQUE NOT NULL,
		phone VARCHAR(64) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		gender VARCHAR(32) NOT NULL DEFAULT '',
		birth_date {ts} NULL,
		favorites TEXT,
		review_count BIGINT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		deactivated_at {ts} NULL,
		reactivated_at {ts} NULL,
		created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS admin_audit_log (
		id {pk},
		admin_id BIGINT NOT NULL,
		admin_email VARCHAR(255) NOT NULL,
		action VARCHAR(64) NOT NULL,
		table_name VARCHAR(64) NOT NULL DEFAULT '',
		record_id VARCHAR(64) NOT NULL DEFAULT '',
		old_data TEXT,
		new_data TEXT,
		user_agent VARCHAR(255) NOT NULL DEFAULT '',
		created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS destination_audit (
		id {pk},
		destination_id VARCHAR(64) NOT NULL,
		action VARCHAR(64) NOT NULL,
		admin_id BIGINT NOT NULL,
		admin_email VARCHAR(255) NOT NULL,
		old_data TEXT,
		new_data TEXT,
		created_at {ts} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates any missing tables. It is idempotent and safe to run at
// every startup.
func (g *Gateway) Migrate(ctx context.Context) error {
	ts := "TIMESTAMP"
	if g.dialect.Name() == "sqlite" {
		ts = "DATETIME"
	}
	repl := strings.NewReplacer("{pk}", g.dialect.AutoIncrementPK(), "{ts}", ts)

	for _, ddl := range migrationDDL {
		stmt := repl.Replace(ddl)
		if _, err := g.db.ExecContext(ctx, stmt); err != nil {
			table := tableNameFromDDL(stmt)
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

func tableNameFromDDL(ddl string) string {
	fields := strings.Fields(ddl)
	for i, f := range fields {
		if strings.EqualFold(f, "EXISTS") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return "?"
}
