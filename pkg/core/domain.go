// Package core holds the post model and the business rules around it.
package core

import (
	"fmt"
	"time"
)

// FrontMatter is the typed metadata block that prefixes a post.
type FrontMatter struct {
	Title         string    `yaml:"title" json:"title"`
	Date          time.Time `yaml:"date" json:"date"`
	TOC           bool      `yaml:"toc" json:"toc"`
	ReadTime      int       `yaml:"readtime" json:"readtime"`
	Autonumbering bool      `yaml:"autonumbering" json:"autonumbering"`
	Draft         bool      `yaml:"draft" json:"draft"`
	Tags          []string  `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Extra keeps keys the schema does not know about so they survive a rewrite.
	Extra map[string]any `yaml:"-" json:"extra,omitempty"`
}

// HasTag reports whether tag is listed in the front matter.
func (fm FrontMatter) HasTag(tag string) bool {
	for _, t := range fm.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Post is a single Markdown article.
// ID is the slash-separated path relative to the posts root, without extension.
// Front-matter fields are promoted, so p.Title reads p.FrontMatter.Title.
type Post struct {
	ID string `json:"id"`
	FrontMatter `json:"front_matter"`
	Body    string    `json:"body"`
	Path    string    `json:"path,omitempty"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

// Published reports whether the draft flag has been cleared.
func (p Post) Published() bool {
	return !p.FrontMatter.Draft
}

// Filter narrows ListPosts results.
type Filter struct {
	IncludeDrafts bool
	Tag           string
	// Pattern is a doublestar glob matched against post IDs.
	Pattern string
}

// EventType represents the type of change in the posts directory.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a post.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
