package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/database"
	"github.com/edumitra/edumitra-backend/internal/logger"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// Bootstraps a tenant: finds or creates the institute by subdomain code,
// then provisions an APPROVED admin account in it. Admins never go through
// the self-registration flow.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	instituteRepo := repository.NewInstituteRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	// Institute code (subdomain)
	fmt.Print("Enter Institute Code (subdomain, e.g. dps): ")
	code, _ := reader.ReadString('\n')
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		fmt.Println("Error: Institute code is required")
		return
	}

	inst, err := instituteRepo.GetByCode(ctx, code)
	if repository.IsNotFound(err) {
		fmt.Print("Institute not found. Enter Institute Name to create it: ")
		instName, _ := reader.ReadString('\n')
		instName = strings.TrimSpace(instName)
		if instName == "" {
			fmt.Println("Error: Institute name is required")
			return
		}
		inst = &model.Institute{Code: code, Name: instName, Active: true}
		if err := instituteRepo.Create(ctx, inst); err != nil {
			log.Fatal().Err(err).Msg("Failed to create institute")
		}
		fmt.Printf("Created institute '%s' (%s.%s)\n", inst.Name, inst.Code, cfg.BaseDomain)
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up institute")
	}

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.User{
		InstituteID:  inst.ID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleAdmin,
		Status:       model.UserStatusApproved,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created in institute '%s' with ID: %d\n",
		admin.Name, admin.Email, inst.Code, admin.ID)
}
