package domain

import "fmt"

// UpstreamProfile points at one report backend.
type UpstreamProfile struct {
	Name    string
	BaseURL string
	Token   string
}

func (p UpstreamProfile) String() string {
	return fmt.Sprintf("%s:%s", p.Name, p.BaseURL)
}
