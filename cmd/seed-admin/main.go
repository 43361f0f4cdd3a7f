// seed-admin creates the first admin user. Run once after the database is
// provisioned; it fails if the username already exists.
//
// Usage:
//
//	go run ./cmd/seed-admin -username admin -password <secret>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/models"
)

func main() {
	username := flag.String("username", "admin", "username for the admin account")
	password := flag.String("password", "", "password for the admin account (min 8 chars)")
	flag.Parse()

	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "-password must be at least 8 characters")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	user, err := models.CreateUser(context.Background(), &models.NewUser{
		Username: *username,
		Password: *password,
		Role:     models.UserRoleAdmin,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create admin:", err)
		os.Exit(1)
	}
	fmt.Printf("created admin user %q (id=%d)\n", user.Username, user.ID)
}
