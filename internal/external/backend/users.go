package backend

import (
	"context"
	"fmt"
)

// Users lists family members
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser registers a member
func (c *Client) CreateUser(ctx context.Context, name string) (*User, error) {
	req := UserCreate{Name: name}
	if err := validate(req); err != nil {
		return nil, err
	}

	var user User
	if err := c.post(ctx, "/users/", req, &user); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"name":    user.Name,
	}).Info("Member created")
	return &user, nil
}

// DeleteUser removes a member (and the backend cascades its accounts)
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d", userID), nil)
}
