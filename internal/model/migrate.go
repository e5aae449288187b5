package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Registration{},
		&Payment{},
		&Ticket{},
		&Attendance{},
		&Message{},
		&Admin{},
		&AuditLog{},
		&EventSettings{},
	); err != nil {
		return err
	}

	// Earlier schemas linked audit rows to admins, which blocked admin deletion.
	if err := db.Exec(
		"ALTER TABLE audit_logs DROP CONSTRAINT IF EXISTS fk_audit_logs_admin",
	).Error; err != nil {
		return err
	}

	// Case-insensitive unique registration email.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_email_lower " +
			"ON registrations ((lower(email)))",
	).Error; err != nil {
		return err
	}

	// Payment status only moves out of pending; the check keeps the value domain closed.
	if err := db.Exec(
		"DO $$ BEGIN " +
			"ALTER TABLE payments ADD CONSTRAINT chk_payments_status " +
			"CHECK (status IN ('pending', 'approved', 'rejected')); " +
			"EXCEPTION WHEN duplicate_object THEN NULL; END $$",
	).Error; err != nil {
		return err
	}

	// Case-insensitive unique admin email.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_email_lower " +
			"ON admins ((lower(email)))",
	).Error
}
