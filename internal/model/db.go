package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&WorkingCopy{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&WorkingCopyReview{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&VersionSnapshot{}); err != nil {
		return err
	}

	return db.AutoMigrate(&AuditLog{})
}
