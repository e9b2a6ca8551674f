// Command courseapi-seed populates the database with a known data set: one
// admin account, a batch of regular users, and courses spread across a set
// of collections. Running it twice is safe; existing rows are left alone.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/config"
	"github.com/coursehq/courseapi/pkg/store"
)

const (
	userCount       = 100
	collectionCount = 10
	courseCount     = 100
)

var collectionNames = []string{
	"Backend Engineering",
	"Frontend Engineering",
	"Databases",
	"Distributed Systems",
	"Security",
	"Machine Learning",
	"DevOps",
	"Mobile Development",
	"Cloud Infrastructure",
	"Software Design",
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.Info("seed complete")
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	userIDs, err := seedUsers(ctx, st, hasher, log)
	if err != nil {
		return err
	}
	collectionIDs, err := seedCollections(ctx, st, log)
	if err != nil {
		return err
	}
	return seedCourses(ctx, st, userIDs, collectionIDs, log)
}

func seedUsers(ctx context.Context, st *store.SQLStore, hasher *auth.PasswordHasher, log *logrus.Logger) ([]int64, error) {
	ids := make([]int64, 0, userCount+1)

	admin, err := ensureUser(ctx, st, hasher, "admin", "adminpassword", auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	ids = append(ids, admin)

	for i := 1; i <= userCount; i++ {
		id, err := ensureUser(ctx, st, hasher,
			fmt.Sprintf("user%d", i), fmt.Sprintf("password%d", i), auth.RoleUser)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	log.WithField("count", len(ids)).Info("users seeded")
	return ids, nil
}

func ensureUser(ctx context.Context, st *store.SQLStore, hasher *auth.PasswordHasher, username, password string, role auth.Role) (int64, error) {
	existing, err := st.GetUserByUsername(ctx, username)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	digest, err := hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	user := &store.User{Username: username, PasswordHash: digest, Role: role}
	if err := st.CreateUser(ctx, user); err != nil {
		return 0, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return user.ID, nil
}

func seedCollections(ctx context.Context, st *store.SQLStore, log *logrus.Logger) ([]int64, error) {
	existing, err := st.ListCollections(ctx, store.CollectionFilter{})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int64, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	ids := make([]int64, 0, collectionCount)
	for i := 0; i < collectionCount; i++ {
		name := collectionNames[i]
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
			continue
		}
		collection := &store.Collection{Name: name}
		if err := st.CreateCollection(ctx, collection); err != nil {
			return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		ids = append(ids, collection.ID)
	}

	log.WithField("count", len(ids)).Info("collections seeded")
	return ids, nil
}

func seedCourses(ctx context.Context, st *store.SQLStore, userIDs, collectionIDs []int64, log *logrus.Logger) error {
	existing, err := st.ListCourses(ctx, store.CourseFilter{}, store.ListOptions{Limit: courseCount})
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Title] = true
	}

	created := 0
	for i := 1; i <= courseCount; i++ {
		title := fmt.Sprintf("Course %d", i)
		if seen[title] {
			continue
		}
		collectionID := collectionIDs[i%len(collectionIDs)]
		course := &store.Course{
			Title:        title,
			Description:  fmt.Sprintf("Seeded course number %d", i),
			Duration:     fmt.Sprintf("%d weeks", i%8+1),
			Outcome:      "complete the curriculum",
			OwnerUserID:  userIDs[i%len(userIDs)],
			CollectionID: &collectionID,
		}
		if err := st.CreateCourse(ctx, course); err != nil {
			return fmt.Errorf("failed to create course %s: %w", title, err)
		}
		created++
	}

	log.WithField("created", created).Info("courses seeded")
	return nil
}
