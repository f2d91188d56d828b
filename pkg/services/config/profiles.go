package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

// Registry lists upstream report backends from an INI file:
//
//	[default]
//	base_url = https://reports.example.com/api
//	token    = ...
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, profile string) (*domain.UpstreamProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, profile string) (*domain.UpstreamProfile, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	baseURL := section.Key("base_url").String()
	if baseURL == "" {
		return nil, fmt.Errorf("profile %s has no base_url", profile)
	}

	return &domain.UpstreamProfile{
		Name:    profile,
		BaseURL: baseURL,
		Token:   section.Key("token").String(),
	}, nil
}

// ResolveUpstream picks the upstream from settings: an explicit base url first,
// then the named profile in the profiles file.
func ResolveUpstream(ctx context.Context, s UpstreamSettings) (*domain.UpstreamProfile, error) {
	if s.BaseURL != "" {
		return &domain.UpstreamProfile{Name: "settings", BaseURL: s.BaseURL, Token: s.Token}, nil
	}
	if s.ProfilesPath == "" {
		return nil, fmt.Errorf("no upstream configured: set upstream.base_url or upstream.profiles_path")
	}

	registry, err := NewRegistry(s.ProfilesPath)
	if err != nil {
		return nil, err
	}
	return registry.GetProfile(ctx, s.Profile)
}
