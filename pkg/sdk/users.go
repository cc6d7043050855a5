package sdk

import (
	"context"
	"net/url"

	"github.com/absmach/fldash/pkg/fl"
)

const (
	usersEndpoint  = "/api/users/"
	myselfEndpoint = usersEndpoint + "myself/"
)

type user struct {
	ID              backendID `json:"id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Actor           bool      `json:"actor"`
	Client          bool      `json:"client"`
	MessageEndpoint string    `json:"message_endpoint"`
	ColorID         *int      `json:"color_id"`
	Color           string    `json:"color"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
}

func (u user) toUser() fl.User {
	return fl.User{
		ID:              string(u.ID),
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Actor:           u.Actor,
		Client:          u.Client,
		MessageEndpoint: u.MessageEndpoint,
		ColorID:         u.ColorID,
		Color:           u.Color,
		Latitude:        u.Latitude,
		Longitude:       u.Longitude,
	}
}

// Login has no dedicated backend endpoint. Credentials are valid when the
// backend accepts them for the current user lookup.
func (sdk *flSDK) Login(ctx context.Context, username, password string) (fl.Token, error) {
	token := BasicToken(username, password)
	if _, err := sdk.CurrentUser(ctx, token); err != nil {
		return fl.Token{}, err
	}

	return fl.Token{AccessToken: token}, nil
}

func (sdk *flSDK) CurrentUser(ctx context.Context, token string) (fl.User, error) {
	var u user
	if err := sdk.get(ctx, myselfEndpoint, token, &u); err != nil {
		return fl.User{}, err
	}

	return u.toUser(), nil
}

func (sdk *flSDK) GetUser(ctx context.Context, token, id string) (fl.User, error) {
	var u user
	if err := sdk.get(ctx, usersEndpoint+url.PathEscape(id)+"/", token, &u); err != nil {
		return fl.User{}, err
	}

	return u.toUser(), nil
}

func (sdk *flSDK) ListUsers(ctx context.Context, token string) ([]fl.User, error) {
	var us []user
	if err := sdk.get(ctx, usersEndpoint, token, &us); err != nil {
		return nil, err
	}

	users := make([]fl.User, len(us))
	for i, u := range us {
		users[i] = u.toUser()
	}

	return users, nil
}
