package report

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rtao-god/solsignal-reports/pkg/services/sections"
)

const (
	KindBacktestSummary     = "backtest-summary"
	KindBacktestDiagnostics = "backtest-diagnostics"
	KindPolicyBranchMega    = "policy-branch-mega"
	KindPfiPerModel         = "pfi-per-model"
)

// KindProfile describes how documents of one report kind are fetched and shaped.
type KindProfile struct {
	Kind     string
	Endpoint string
	// Rules splits the tables into groups. Nil keeps one flat page.
	Rules *sections.RuleTable
	// FineGroups adds the diagnostics groups on top of the Rules split.
	FineGroups bool
	TabPrefix  string
	PFI        bool
}

type Registry interface {
	Register(profile KindProfile) error
	Get(kind string) (KindProfile, error)
	List() []KindProfile
}

type registry struct {
	mu    sync.RWMutex
	kinds map[string]KindProfile
}

func NewRegistry() Registry {
	return &registry{
		kinds: make(map[string]KindProfile),
	}
}

// NewDefaultRegistry returns a registry holding the built-in report kinds.
func NewDefaultRegistry() Registry {
	r := NewRegistry()
	for _, p := range BuiltinKinds() {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
	return r
}

func BuiltinKinds() []KindProfile {
	return []KindProfile{
		{
			Kind:       KindBacktestSummary,
			Endpoint:   KindBacktestSummary,
			Rules:      sections.BacktestRules,
			FineGroups: true,
			TabPrefix:  "backtest",
		},
		{
			Kind:       KindBacktestDiagnostics,
			Endpoint:   KindBacktestDiagnostics,
			Rules:      sections.DiagnosticsRules,
			FineGroups: true,
			TabPrefix:  "diagnostics",
		},
		{
			Kind:      KindPolicyBranchMega,
			Endpoint:  KindPolicyBranchMega,
			TabPrefix: "mega",
		},
		{
			Kind:      KindPfiPerModel,
			Endpoint:  KindPfiPerModel,
			TabPrefix: "pfi",
			PFI:       true,
		},
	}
}

func (r *registry) Register(profile KindProfile) error {
	if profile.Kind == "" {
		return fmt.Errorf("report kind cannot be empty")
	}
	if profile.Endpoint == "" {
		return fmt.Errorf("report kind %q has no endpoint", profile.Kind)
	}
	if profile.FineGroups && profile.Rules == nil {
		return fmt.Errorf("report kind %q needs a rule table for fine groups", profile.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[profile.Kind]; exists {
		return fmt.Errorf("report kind %q is already registered", profile.Kind)
	}

	r.kinds[profile.Kind] = profile
	return nil
}

func (r *registry) Get(kind string) (KindProfile, error) {
	r.mu.RLock()
	profile, exists := r.kinds[kind]
	r.mu.RUnlock()

	if !exists {
		return KindProfile{}, fmt.Errorf("report kind %q: %w", kind, ErrUnknownKind)
	}
	return profile, nil
}

// List returns the registered kinds sorted by name.
func (r *registry) List() []KindProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]KindProfile, 0, len(r.kinds))
	for _, p := range r.kinds {
		kinds = append(kinds, p)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Kind < kinds[j].Kind })
	return kinds
}
