package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
)

const usersCollection = "users"

// ErrEmailTaken is returned when registering an email that already has
// an account.
var ErrEmailTaken = errors.New("email already registered")

// CreateUser persists a new user and returns its id. Emails are unique
// across the collection.
func CreateUser(ctx context.Context, cli docstore.Client, email, displayName, passwordHash string) (string, error) {
	id, err := cli.Create(ctx, usersCollection, docstore.Fields{
		"email":        email,
		"displayName":  displayName,
		"passwordHash": passwordHash,
		"createdAt":    docstore.ServerTimestamp{},
	})
	if docstore.IsUniqueViolation(err) {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", fmt.Errorf("creating user: %w", err)
	}
	return id, nil
}

// GetUser returns a user by id, or nil when it does not exist.
func GetUser(ctx context.Context, cli docstore.Client, id string) (*model.User, error) {
	doc, err := cli.Get(ctx, usersCollection, id)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return decodeUser(doc)
}

// GetUserByEmail returns a user by email, or nil.
func GetUserByEmail(ctx context.Context, cli docstore.Client, email string) (*model.User, error) {
	docs, err := cli.Query(ctx, usersCollection, docstore.Query{
		Filters: []docstore.Filter{{Field: "email", Value: email}},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(&docs[0])
}

// UpdateUserPassword replaces a user's password hash.
func UpdateUserPassword(ctx context.Context, cli docstore.Client, id, passwordHash string) error {
	err := cli.Update(ctx, usersCollection, id, docstore.Fields{"passwordHash": passwordHash})
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

func decodeUser(doc *docstore.Doc) (*model.User, error) {
	user := &model.User{}
	if err := doc.Decode(user); err != nil {
		return nil, fmt.Errorf("decoding user %s: %w", doc.ID, err)
	}
	user.ID = doc.ID
	return user, nil
}
