package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	c, err := Load(Paths{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(c.Courses) != 4 {
		t.Errorf("len(Courses) = %d, want 4", len(c.Courses))
	}
	if len(c.Quizzes) != 3 {
		t.Errorf("len(Quizzes) = %d, want 3", len(c.Quizzes))
	}
	if len(c.Projects) != 6 {
		t.Errorf("len(Projects) = %d, want 6", len(c.Projects))
	}
	if len(c.Resources) == 0 {
		t.Error("Resources is empty")
	}

	for _, quizType := range []string{"programming", "design", "engines"} {
		q, ok := c.Quiz(quizType)
		if !ok {
			t.Fatalf("Quiz(%q) not found", quizType)
		}
		if q.Type != quizType {
			t.Errorf("Quiz(%q).Type = %q", quizType, q.Type)
		}
		if len(q.Questions) != 5 {
			t.Errorf("Quiz(%q) has %d questions, want 5", quizType, len(q.Questions))
		}
	}
}

func TestLookups(t *testing.T) {
	c, err := Load(Paths{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if course := c.Course("unity-beginner"); course == nil {
		t.Error("Course(unity-beginner) = nil")
	}
	if course := c.Course("nope"); course != nil {
		t.Errorf("Course(nope) = %v, want nil", course)
	}
	if p := c.Project("space-runner"); p == nil {
		t.Error("Project(space-runner) = nil")
	}
	r := c.Resource("pixel-art-pack")
	if r == nil {
		t.Fatal("Resource(pixel-art-pack) = nil")
	}
	if !r.Premium {
		t.Error("pixel-art-pack should be premium")
	}
}

func TestLoadFromFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	content := `[{"id": "solo", "title": "Solo Course", "price": 10}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(Paths{Courses: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Courses) != 1 || c.Courses[0].ID != "solo" {
		t.Errorf("override courses = %+v", c.Courses)
	}
	// Other sections still come from embedded defaults.
	if len(c.Quizzes) != 3 {
		t.Errorf("len(Quizzes) = %d, want 3", len(c.Quizzes))
	}
}

func TestLoadRejectsBadCorrectIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzes.json")
	content := `{"broken": {"title": "Broken", "questions": [
		{"id": 1, "question": "q", "options": ["a", "b"], "correct": 5}
	]}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(Paths{Quizzes: path}); err == nil {
		t.Error("Load() with out-of-range correct index should fail")
	}
}
