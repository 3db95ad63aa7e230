package store

import (
	"context"
	"testing"
	"time"

	"github.com/gamedev-academy/academy/internal/draft"
	"github.com/gamedev-academy/academy/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func submission(id string, f model.Flow) model.SubmissionRecord {
	return model.SubmissionRecord{
		ID:          id,
		Flow:        f,
		Values:      map[string]any{"email": "dev@example.com"},
		Status:      model.SubmissionReceived,
		SubmittedAt: time.Now(),
	}
}

func TestSubmissionLog(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendSubmission(submission("ENR-1", model.FlowEnrollment)); err != nil {
		t.Fatalf("AppendSubmission: %v", err)
	}
	if err := s.AppendSubmission(submission("ENR-2", model.FlowEnrollment)); err != nil {
		t.Fatalf("AppendSubmission: %v", err)
	}
	if err := s.AppendSubmission(submission("CONTACT-1", model.FlowContact)); err != nil {
		t.Fatalf("AppendSubmission: %v", err)
	}

	enrollments, err := s.ListSubmissions(model.FlowEnrollment)
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(enrollments) != 2 {
		t.Errorf("len(enrollments) = %d, want 2", len(enrollments))
	}
	if enrollments[0].Values["email"] != "dev@example.com" {
		t.Errorf("payload round trip lost values: %v", enrollments[0].Values)
	}

	all, err := s.ListSubmissions("")
	if err != nil {
		t.Fatalf("ListSubmissions(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}

	n, err := s.SubmissionCount(model.FlowContact)
	if err != nil {
		t.Fatalf("SubmissionCount: %v", err)
	}
	if n != 1 {
		t.Errorf("SubmissionCount(contact) = %d, want 1", n)
	}
}

func TestQuizResultLatestAndHistory(t *testing.T) {
	s := newTestStore(t)
	ns := "c1:quiz_programming_result"

	first := model.QuizResult{
		QuizType: "programming", Score: 2, Percentage: 40,
		SkillLevel: "beginner", CorrectAnswers: 2, TotalQuestions: 5,
		TimeSpent: 120, CompletedAt: time.Now(),
		Answers: map[int64]int{1: 0, 2: 2},
	}
	if err := s.SaveQuizResult(ns, first); err != nil {
		t.Fatalf("SaveQuizResult: %v", err)
	}

	second := first
	second.Score = 5
	second.Percentage = 100
	second.SkillLevel = "expert"
	if err := s.SaveQuizResult(ns, second); err != nil {
		t.Fatalf("SaveQuizResult: %v", err)
	}

	latest, err := s.GetQuizResult(ns)
	if err != nil {
		t.Fatalf("GetQuizResult: %v", err)
	}
	if latest == nil || latest.Percentage != 100 {
		t.Errorf("latest = %+v, want percentage 100", latest)
	}

	history, err := s.ListQuizHistory("c1:")
	if err != nil {
		t.Fatalf("ListQuizHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len(history) = %d, want 2 (every run is kept)", len(history))
	}

	other, err := s.ListQuizHistory("c2:")
	if err != nil {
		t.Fatalf("ListQuizHistory(c2): %v", err)
	}
	if len(other) != 0 {
		t.Errorf("history leaks across clients: %v", other)
	}

	n, err := s.QuizHistoryCount("")
	if err != nil {
		t.Fatalf("QuizHistoryCount: %v", err)
	}
	if n != 2 {
		t.Errorf("QuizHistoryCount = %d, want 2", n)
	}
}

func TestGetQuizResultMissing(t *testing.T) {
	s := newTestStore(t)

	res, err := s.GetQuizResult("c1:quiz_design_result")
	if err != nil {
		t.Fatalf("GetQuizResult: %v", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
}

func TestDraftAdapter(t *testing.T) {
	s := newTestStore(t)
	drafts := s.Drafts()
	ctx := context.Background()
	ns := "c1:enrollment_draft"

	rec := draft.NewRecord(map[string]any{"fullName": "Ada", "step": "1"}, 2)
	if err := drafts.Save(ctx, ns, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := drafts.Load(ctx, ns)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.FlowStep != 2 || got.FormData["fullName"] != "Ada" {
		t.Errorf("round trip = %+v", got)
	}

	// Upsert replaces, never duplicates.
	rec.FlowStep = 3
	if err := drafts.Save(ctx, ns, rec); err != nil {
		t.Fatalf("Save(update): %v", err)
	}
	got, err = drafts.Load(ctx, ns)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FlowStep != 3 {
		t.Errorf("FlowStep after update = %d, want 3", got.FlowStep)
	}

	if err := drafts.Clear(ctx, ns); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = drafts.Load(ctx, ns)
	if err != nil {
		t.Fatalf("Load after clear: %v", err)
	}
	if got != nil {
		t.Errorf("draft survived Clear: %+v", got)
	}
}

func TestDraftCorruptPayloadReadsAsAbsent(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveDraft("c1:enrollment_draft", []byte("{not json")); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := s.Drafts().Load(context.Background(), "c1:enrollment_draft")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("corrupt draft should read as absent, got %+v", got)
	}
}

func TestDownloadCounters(t *testing.T) {
	s := newTestStore(t)

	count, err := s.RecordDownload("c1", "pixel-art-pack")
	if err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	count, err = s.RecordDownload("c2", "pixel-art-pack")
	if err != nil {
		t.Fatalf("RecordDownload: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	n, err := s.DownloadCount("pixel-art-pack")
	if err != nil {
		t.Fatalf("DownloadCount: %v", err)
	}
	if n != 2 {
		t.Errorf("DownloadCount = %d, want 2", n)
	}
	n, err = s.DownloadCount("never-downloaded")
	if err != nil {
		t.Fatalf("DownloadCount: %v", err)
	}
	if n != 0 {
		t.Errorf("DownloadCount(never) = %d, want 0", n)
	}

	has, err := s.HasDownloaded("c1", "pixel-art-pack")
	if err != nil {
		t.Fatalf("HasDownloaded: %v", err)
	}
	if !has {
		t.Error("HasDownloaded(c1) = false, want true")
	}
	has, err = s.HasDownloaded("c3", "pixel-art-pack")
	if err != nil {
		t.Fatalf("HasDownloaded: %v", err)
	}
	if has {
		t.Error("HasDownloaded(c3) = true, want false")
	}
}

func TestProjectViewsAndFavorites(t *testing.T) {
	s := newTestStore(t)

	for want := 1; want <= 3; want++ {
		views, err := s.RecordProjectView("space-runner")
		if err != nil {
			t.Fatalf("RecordProjectView: %v", err)
		}
		if views != want {
			t.Errorf("views = %d, want %d", views, want)
		}
	}

	on, err := s.ToggleFavorite("c1", "space-runner")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !on {
		t.Error("first toggle = false, want true")
	}
	if _, err := s.ToggleFavorite("c1", "web-racer"); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	favs, err := s.ListFavorites("c1")
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favs) != 2 {
		t.Errorf("favorites = %v, want 2 entries", favs)
	}

	off, err := s.ToggleFavorite("c1", "space-runner")
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if off {
		t.Error("second toggle = true, want false")
	}
	favs, err = s.ListFavorites("c1")
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(favs) != 1 || favs[0] != "web-racer" {
		t.Errorf("favorites after untoggle = %v", favs)
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendSubmission(submission("ENR-1", model.FlowEnrollment)); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendSubmission(submission("CONTACT-1", model.FlowContact)); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendSubmission(submission("SIGNUP-1", model.FlowResourceEmail)); err != nil {
		t.Fatal(err)
	}
	result := model.QuizResult{QuizType: "design", Percentage: 60, SkillLevel: "intermediate", CompletedAt: time.Now()}
	if err := s.SaveQuizResult("c1:quiz_design_result", result); err != nil {
		t.Fatal(err)
	}

	export, err := s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(export.Enrollments) != 1 || len(export.ContactMessages) != 1 || len(export.EmailSignups) != 1 {
		t.Errorf("export submissions = %d/%d/%d, want 1/1/1",
			len(export.Enrollments), len(export.ContactMessages), len(export.EmailSignups))
	}
	if len(export.QuizRuns) != 1 {
		t.Errorf("export quiz runs = %d, want 1", len(export.QuizRuns))
	}
	if export.ExportedAt.IsZero() {
		t.Error("ExportedAt is zero")
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	// Missing file returns empty string.
	hash, err := s.GetImportedFileHash("/some/quizzes.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/quizzes.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	hash, err = s.GetImportedFileHash("/some/quizzes.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("expected 'abc123', got %q", hash)
	}

	// Update existing.
	if err := s.SetImportedFileHash("/some/quizzes.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/quizzes.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}
