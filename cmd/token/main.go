// Command token prints a signed access token for local development.
// It looks the user up by email and, with -create, registers them first.
package main

import (
	"context"
	"flag"
	"fmt"

	"makerspace-booking/cmd/bootstrap"
	"makerspace-booking/config"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/infrastructure/database"
	"makerspace-booking/internal/repository"
	"makerspace-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
)

func main() {
	email := flag.String("email", "", "email of the user to sign a token for")
	create := flag.Bool("create", false, "create the user when it does not exist")
	name := flag.String("name", "", "full name used with -create")
	roleName := flag.String("role", entity.RoleUser, "role used with -create (admin, host, user)")
	flag.Parse()

	if *email == "" {
		logrus.Fatal("-email is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := bootstrap.NewLogger(cfg.App)

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()

	user, err := userRepo.FindByEmail(db, *email)
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}

	if user == nil {
		if !*create {
			log.Fatalf("No user with email %s (pass -create to register one)", *email)
		}

		role, err := roleRepo.FindByName(ctx, db, *roleName)
		if err != nil {
			log.Fatalf("Failed to look up role: %v", err)
		}
		if role == nil {
			log.Fatalf("Unknown role %q", *roleName)
		}

		fullName := *name
		if fullName == "" {
			fullName = *email
		}

		user = &entity.User{
			RoleID:   role.ID,
			Email:    *email,
			FullName: fullName,
		}
		if err := userRepo.Create(db, user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		log.WithFields(logrus.Fields{"user_id": user.ID, "role": role.RoleName}).Info("User created")
	}

	token, _, err := jwt.NewJWTService(cfg.JWT).GenerateAccessToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
}
