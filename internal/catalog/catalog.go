// Package catalog loads the static site content: courses, skill quizzes,
// downloadable resources, and showcase projects. Content ships embedded and
// can be overridden per file with CLI flags.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gamedev-academy/academy/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

// Paths are optional file overrides for the embedded defaults.
type Paths struct {
	Courses   string
	Quizzes   string
	Resources string
	Projects  string
}

// Catalog is the loaded site content. Read-only after Load.
type Catalog struct {
	Courses   []model.Course
	Quizzes   map[string]model.SkillQuiz
	Resources []model.Resource
	Projects  []model.Project
}

// Load reads all content files, falling back to the embedded defaults for
// any path left empty.
func Load(p Paths) (*Catalog, error) {
	c := &Catalog{}

	if err := loadJSON(p.Courses, "data/courses.json", &c.Courses); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	if err := loadJSON(p.Quizzes, "data/quizzes.json", &c.Quizzes); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	if err := loadJSON(p.Resources, "data/resources.json", &c.Resources); err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	if err := loadJSON(p.Projects, "data/projects.json", &c.Projects); err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	// The quiz map key is authoritative for the type name.
	for key, q := range c.Quizzes {
		q.Type = key
		c.Quizzes[key] = q
	}

	for key, q := range c.Quizzes {
		if len(q.Questions) == 0 {
			return nil, fmt.Errorf("quiz %q has no questions", key)
		}
		for _, question := range q.Questions {
			if question.Correct < 0 || question.Correct >= len(question.Options) {
				return nil, fmt.Errorf("quiz %q question %d: correct index %d out of range",
					key, question.ID, question.Correct)
			}
		}
	}

	slog.Info("loaded catalog",
		"courses", len(c.Courses),
		"quizzes", len(c.Quizzes),
		"resources", len(c.Resources),
		"projects", len(c.Projects),
	)
	return c, nil
}

func loadJSON(path, embedded string, out any) error {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	} else {
		data, err = dataFS.ReadFile(embedded)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", embedded, err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", embedded, err)
	}
	return nil
}

// Course returns a course by ID, or nil.
func (c *Catalog) Course(id string) *model.Course {
	for i := range c.Courses {
		if c.Courses[i].ID == id {
			return &c.Courses[i]
		}
	}
	return nil
}

// Quiz returns the question set for a quiz type.
func (c *Catalog) Quiz(quizType string) (model.SkillQuiz, bool) {
	q, ok := c.Quizzes[quizType]
	return q, ok
}

// Resource returns a resource by ID, or nil.
func (c *Catalog) Resource(id string) *model.Resource {
	for i := range c.Resources {
		if c.Resources[i].ID == id {
			return &c.Resources[i]
		}
	}
	return nil
}

// Project returns a showcase project by ID, or nil.
func (c *Catalog) Project(id string) *model.Project {
	for i := range c.Projects {
		if c.Projects[i].ID == id {
			return &c.Projects[i]
		}
	}
	return nil
}
