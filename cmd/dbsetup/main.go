package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/config"
	"github.com/you/fintrack/internal/infrastructure/auth"
	"github.com/you/fintrack/internal/infrastructure/database"
	"github.com/you/fintrack/internal/infrastructure/repositories"
	"github.com/you/fintrack/internal/services"
)

// dbsetup migrates the schema, seeds the route policies and optionally
// promotes an existing verified account to admin
func main() {
	promote := flag.String("admin", "", "email of a verified user to promote to admin")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("✓ Database connection successful")

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}
	fmt.Println("✓ AutoMigrate completed successfully")

	enforcer, err := auth.NewEnforcer(db, cfg.CasbinModelPath)
	if err != nil {
		log.Fatalf("Failed to load casbin: %v", err)
	}
	policies := services.NewPolicyService(enforcer)
	if err := policies.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed policies: %v", err)
	}
	fmt.Printf("✓ Route policies seeded (current count: %d)\n", len(policies.GetPolicies()))

	var userCount int64
	if err := db.Model(&repositories.DBUser{}).Count(&userCount).Error; err != nil {
		log.Fatalf("Failed to query users table: %v", err)
	}
	fmt.Printf("✓ Users table accessible (current count: %d)\n", userCount)

	if *promote == "" {
		return
	}

	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	user, err := users.FindByEmail(ctx, domain.NormalizeEmail(*promote))
	if err != nil {
		log.Fatalf("Failed to find %s: %v", *promote, err)
	}
	if !user.IsVerified() {
		log.Fatalf("%s has not verified the account yet", user.Email)
	}
	user.Role = domain.RoleAdmin
	if err := users.Update(ctx, user); err != nil {
		log.Fatalf("Failed to promote %s: %v", user.Email, err)
	}
	fmt.Printf("✓ %s is now an admin\n", user.Email)
}
