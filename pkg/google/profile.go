package google

import (
	"context"
	"fmt"
	"net/http"

	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Profile is the subset of the Google account returned by the userinfo endpoint.
type Profile struct {
	Id          string
	DisplayName string
	Email       string
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context, client *http.Client) (Profile, error)
}

// UserinfoFetcher reads the profile with the OAuth2 v2 userinfo API.
type UserinfoFetcher struct {
	endpoint string
}

// NewUserinfoFetcher returns a fetcher for the given API endpoint, or Google's when empty.
func NewUserinfoFetcher(endpoint string) *UserinfoFetcher {
	return &UserinfoFetcher{endpoint: endpoint}
}

func (f *UserinfoFetcher) FetchProfile(ctx context.Context, client *http.Client) (Profile, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}
	service, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return Profile{}, fmt.Errorf("unable to create userinfo client: %w", err)
	}
	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Profile{}, fmt.Errorf("unable to retrieve Google profile: %w", err)
	}
	return Profile{
		Id:          info.Id,
		DisplayName: info.Name,
		Email:       info.Email,
	}, nil
}
