package sections

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

const maxTabLabelRunes = 64

var (
	pfiModelRe        = regexp.MustCompile(`(?i)^PFI\s+по\s+фичам:\s*(.+?)\s+thr=`)
	pfiPrefixRe       = regexp.MustCompile(`(?i)^(PFI\s+по\s+фичам|PFI\s+by\s+features|PFI\b)\s*:?\s*`)
	parentheticalTail = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	thresholdTail     = regexp.MustCompile(`(?i)(^|\s+)thr=\S*\s*$`)
)

// BuildTabs turns sections into navigation tabs. Anchors use the position
// inside the given slice, so a filtered page numbers its tabs from 1 again.
func BuildTabs(prefix string, sections []*domain.TableSection) []domain.TabDescriptor {
	tabs := make([]domain.TabDescriptor, 0, len(sections))
	for i, s := range sections {
		label := truncateLabel(NormalizeTitle(s.Title))
		if label == "" {
			label = fmt.Sprintf("Секция %d", i+1)
		}
		anchor := anchorFor(prefix, "section", i)
		tabs = append(tabs, domain.TabDescriptor{ID: anchor, Label: label, Anchor: anchor})
	}
	return tabs
}

// BuildPfiTabs builds tabs for per-model feature importance sections,
// labelled with the model name.
func BuildPfiTabs(prefix string, sections []*domain.TableSection) []domain.TabDescriptor {
	tabs := make([]domain.TabDescriptor, 0, len(sections))
	for i, s := range sections {
		label := truncateLabel(PfiModelLabel(s.Title))
		if label == "" {
			label = fmt.Sprintf("Модель %d", i+1)
		}
		anchor := anchorFor(prefix, "model", i)
		tabs = append(tabs, domain.TabDescriptor{ID: anchor, Label: label, Anchor: anchor})
	}
	return tabs
}

// PfiModelLabel extracts the model name from "PFI по фичам: <model> thr=... (AUC=...)".
// It returns an empty string when nothing usable is left.
func PfiModelLabel(title string) string {
	title = strings.TrimSpace(NormalizeTitle(title))
	if m := pfiModelRe.FindStringSubmatch(title); m != nil {
		if model := strings.TrimSpace(m[1]); model != "" {
			return model
		}
	}

	label := pfiPrefixRe.ReplaceAllString(title, "")
	for parentheticalTail.MatchString(label) {
		label = parentheticalTail.ReplaceAllString(label, "")
	}
	label = thresholdTail.ReplaceAllString(label, "")
	return strings.TrimSpace(label)
}

func anchorFor(prefix, kind string, i int) string {
	if prefix == "" {
		return fmt.Sprintf("%s-%d", kind, i+1)
	}
	return fmt.Sprintf("%s-%s-%d", prefix, kind, i+1)
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxTabLabelRunes {
		return label
	}
	return strings.TrimRight(string(runes[:maxTabLabelRunes]), " ") + "…"
}
