package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"socialbook/internal/auth"
	apperrors "socialbook/internal/errors"
	"socialbook/internal/model"
	"socialbook/internal/repository"
	"socialbook/internal/service"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "1234"

const (
	historyWeeks = 24
	// Gap between consecutive seeded posts is drawn from [1µs, maxPostGap].
	maxPostGap = 100000 * time.Second
)

var people = []struct{ username, firstname, lastname string }{
	{"haris", "Zacharias-Christos", "Argyropoulos"},
	{"ioanna", "Ioanna", "Mitsani"},
	{"stavros", "Stavros", "Tsiogkas"},
	{"marios", "Marios", "Tsioutsis"},
	{"george", "George", "Sisko"},
	{"lena", "Lena", "Lekkou"},
	{"nikos.a", "Nikolaos", "Apostolakis"},
	{"nikos.b", "Nikolaos", "Bilalis"},
}

var words = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod
tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud exercitation
ullamco laboris nisi aliquip ex ea commodo consequat duis aute irure in reprehenderit voluptate
velit esse cillum fugiat nulla pariatur excepteur sint occaecat cupidatat non proident sunt culpa
qui officia deserunt mollit anim id est laborum`)

// Result counts what a run created.
type Result struct {
	Users         int
	Followerships int
	Posts         int
}

// Seeder replaces all users with a fixed cast, random followers and months of backdated posts.
type Seeder struct {
	users       repository.UserRepository
	posts       repository.PostRepository
	userService service.UserService
	rnd         *rand.Rand
	now         func() time.Time
}

// New creates a seeder. Equal seeds produce equal follower graphs and post bodies.
func New(users repository.UserRepository, posts repository.PostRepository, userService service.UserService, seed int64) *Seeder {
	return &Seeder{
		users:       users,
		posts:       posts,
		userService: userService,
		rnd:         newRand(seed),
		now:         time.Now,
	}
}

// Run wipes every user, which cascades to their posts, comments and follow edges,
// and then seeds fresh data.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if _, err := s.users.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("delete users: %w", err)
	}

	hashed, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(people))
	for _, p := range people {
		u := model.User{
			Username:  p.username,
			Email:     p.username + "@example.com",
			Password:  hashed,
			Firstname: p.firstname,
			Lastname:  p.lastname,
		}
		if err := s.users.Create(ctx, &u); err != nil {
			return nil, fmt.Errorf("create user %s: %w", p.username, err)
		}
		users = append(users, u)
	}

	res := &Result{Users: len(users)}
	for _, followee := range users {
		for _, follower := range s.sample(users, 1+s.rnd.Intn(len(users))) {
			err := s.userService.Follow(ctx, follower.ID, followee.ID)
			switch {
			case errors.Is(err, apperrors.ErrSelfFollow):
				continue
			case err != nil:
				return nil, fmt.Errorf("follow %s -> %s: %w", follower.Username, followee.Username, err)
			}
			res.Followerships++
		}
	}

	now := s.now().UTC()
	err = s.posts.WithTransaction(ctx, func(ctx context.Context, repo repository.PostRepository) error {
		for ts := now.Add(-historyWeeks * 7 * 24 * time.Hour); !ts.After(now); ts = ts.Add(s.gap()) {
			author := users[s.rnd.Intn(len(users))]
			post := model.Post{Body: s.sentence(), CreatedAt: ts, AuthorID: author.ID}
			if err := repo.Create(ctx, &post); err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			res.Posts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// sample picks n distinct users.
func (s *Seeder) sample(users []model.User, n int) []model.User {
	picked := make([]model.User, 0, n)
	for _, i := range s.rnd.Perm(len(users))[:n] {
		picked = append(picked, users[i])
	}
	return picked
}

func (s *Seeder) gap() time.Duration {
	return time.Duration(1+s.rnd.Int63n(int64(maxPostGap/time.Microsecond))) * time.Microsecond
}

// sentence builds a capitalised lorem sentence that fits a post body.
func (s *Seeder) sentence() string {
	n := 4 + s.rnd.Intn(12)
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, words[s.rnd.Intn(len(words))])
	}
	text := strings.Join(parts, " ")
	if len(text) > model.PostBodyMaxLength-1 {
		text = strings.TrimSpace(text[:model.PostBodyMaxLength-1])
	}
	return strings.ToUpper(text[:1]) + text[1:] + "."
}
