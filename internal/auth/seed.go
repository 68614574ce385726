package auth

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser ensures at least one administrator account exists so a
// fresh deployment can log in and create events.
func SeedAdminUser(db *gorm.DB) error {
	repo := NewRepository(db)

	count, err := repo.CountByRole(RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_DEFAULT_PASSWORD")
	if password == "" {
		password = "ChangeMe@123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		Username:     "admin",
		Email:        "admin@college.edu",
		PasswordHash: string(hash),
		FullName:     "System Administrator",
		Role:         RoleAdmin,
	}
	if err := repo.Create(admin); err != nil {
		return err
	}

	log.Println("✅ Seeded default admin user (username: admin)")
	return nil
}
