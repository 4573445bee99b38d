package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"socialbook/internal/config"
	"socialbook/internal/db"
	"socialbook/internal/model"
	"socialbook/internal/repository"
	"socialbook/internal/seed"
	"socialbook/internal/service"
)

var seedValue int64

var rootCmd = &cobra.Command{
	Use:   "seed [command]",
	Short: "Socialbook database administration",
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Drop every table and recreate the schema",
	Args:  cobra.NoArgs,
	Run:   initDB,
}

var addDataCmd = &cobra.Command{
	Use:   "add-data",
	Short: "Replace all users with demo users, followers and backdated posts",
	Args:  cobra.NoArgs,
	Run:   addData,
}

var followCmd = &cobra.Command{
	Use:   "follow FOLLOWER FOLLOWEE",
	Short: "Make one user follow another",
	Args:  cobra.ExactArgs(2),
	Run:   follow,
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow FOLLOWER FOLLOWEE",
	Short: "Remove a follow edge",
	Args:  cobra.ExactArgs(2),
	Run:   unfollow,
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user USERNAME",
	Short: "Delete a user together with their posts, comments and follow edges",
	Args:  cobra.ExactArgs(1),
	Run:   deleteUser,
}

func init() {
	addDataCmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed (default: current time)")
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(addDataCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
	rootCmd.AddCommand(deleteUserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func connect() *gorm.DB {
	cfg := config.Load()
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, db.Options{LogSQL: cfg.DBLogSQL})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)
	return gormDB
}

func initDB(cmd *cobra.Command, args []string) {
	gormDB := connect()
	if err := db.Reset(gormDB); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database initialised")
}

func addData(cmd *cobra.Command, args []string) {
	gormDB := connect()
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if !cmd.Flags().Changed("seed") {
		seedValue = time.Now().UnixNano()
	}
	users := repository.NewUserRepository(gormDB)
	posts := repository.NewPostRepository(gormDB)
	userService := service.NewUserService(users, posts, repository.NewFollowRepository(gormDB))
	seeder := seed.New(users, posts, userService, seedValue)
	res, err := seeder.Run(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}
	log.Printf("Seeded %d users, %d followerships and %d posts (seed %d)",
		res.Users, res.Followerships, res.Posts, seedValue)
}

type admin struct {
	users       repository.UserRepository
	userService service.UserService
}

func newAdmin() *admin {
	gormDB := connect()
	users := repository.NewUserRepository(gormDB)
	posts := repository.NewPostRepository(gormDB)
	return &admin{
		users:       users,
		userService: service.NewUserService(users, posts, repository.NewFollowRepository(gormDB)),
	}
}

func (a *admin) lookup(ctx context.Context, username string) (*model.User, error) {
	user, err := a.users.FindByUsername(ctx, service.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, nil
}

func (a *admin) pair(ctx context.Context, args []string) (*model.User, *model.User) {
	follower, err := a.lookup(ctx, args[0])
	if err != nil {
		log.Fatalf("Failed to find follower: %v", err)
	}
	followee, err := a.lookup(ctx, args[1])
	if err != nil {
		log.Fatalf("Failed to find followee: %v", err)
	}
	return follower, followee
}

func follow(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := newAdmin()
	follower, followee := a.pair(ctx, args)
	if err := a.userService.Follow(ctx, follower.ID, followee.ID); err != nil {
		log.Fatalf("Failed to follow: %v", err)
	}
	log.Printf("%s now follows %s", follower.Username, followee.Username)
}

func unfollow(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := newAdmin()
	follower, followee := a.pair(ctx, args)
	if err := a.userService.Unfollow(ctx, follower.ID, followee.ID); err != nil {
		log.Fatalf("Failed to unfollow: %v", err)
	}
	log.Printf("%s no longer follows %s", follower.Username, followee.Username)
}

func deleteUser(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := newAdmin()
	user, err := a.lookup(ctx, args[0])
	if err != nil {
		log.Fatalf("Failed to find user: %v", err)
	}
	if err := a.userService.DeleteUser(ctx, user.ID); err != nil {
		log.Fatalf("Failed to delete user: %v", err)
	}
	log.Printf("Deleted %s", user.Username)
}
