package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'EMPLOYEE',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createInvitationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE registration_invitations (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		created_by TEXT NOT NULL,
		used_at DATETIME,
		created_at DATETIME
	);`)
}

func createVisaDocumentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE visa_documents (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type TEXT NOT NULL,
		file_ref TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		feedback TEXT,
		uploaded_at DATETIME NOT NULL,
		reviewed_by TEXT,
		reviewed_at DATETIME,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE(employee_id, type)
	);`)
}

func createOnboardingTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE onboarding_applications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		feedback TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		middle_name TEXT,
		preferred_name TEXT,
		phone TEXT NOT NULL,
		work_phone TEXT,
		address_building TEXT,
		address_street TEXT,
		address_city TEXT,
		address_state TEXT,
		address_zip TEXT,
		date_of_birth DATETIME,
		gender TEXT,
		citizenship TEXT NOT NULL,
		work_authorization TEXT,
		work_authorization_title TEXT,
		authorization_start DATETIME,
		authorization_end DATETIME,
		profile_picture_ref TEXT,
		driver_license_ref TEXT,
		work_authorization_ref TEXT,
		emergency_contacts TEXT,
		submitted_at DATETIME,
		reviewed_at DATETIME,
		reviewed_by TEXT,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
