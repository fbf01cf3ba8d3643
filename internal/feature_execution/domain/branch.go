package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug lower-cases s and collapses runs of whitespace to single underscores.
func Slug(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// BranchName derives the branch a feature's changes target.
//
// The first feature of a project lands on a branch named after the project
// itself, so the initial generation deploys straight onto the project's
// primary branch. Every later feature gets a disposable branch derived
// from its title, suffixed with a millisecond timestamp so two features
// sharing a title never collide.
func BranchName(projectName, title string, first bool, at time.Time) string {
	if first {
		return Slug(projectName)
	}
	return fmt.Sprintf("%s_%d", Slug(title), at.UnixMilli())
}
