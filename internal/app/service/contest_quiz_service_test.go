package service

import (
	"context"
	"testing"
	"time"
	"tle_quiz/internal/domain/model"
)

func contestInput(contestID, displayID string) CreateContestQuizRequest {
	return CreateContestQuizRequest{ContestID: contestID, QuizInput: sampleInput(displayID)}
}

func TestContestQuizCreate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	seedContest(t, s.db, underway("c1"))
	seedContest(t, s.db, underway("c2"))

	q, err := s.contest.Create(ctx, ownAdmin, contestInput("c1", "A"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if q.ContestID == nil || *q.ContestID != "c1" {
		t.Fatalf("contest id = %v", q.ContestID)
	}

	// same display id in another scope is fine
	if _, err := s.contest.Create(ctx, ownAdmin, contestInput("c2", "A")); err != nil {
		t.Fatalf("Create in c2: %v", err)
	}
	if _, err := s.global.Create(ctx, ownAdmin, sampleInput("A")); err != nil {
		t.Fatalf("Create global: %v", err)
	}

	_, err = s.contest.Create(ctx, ownAdmin, contestInput("c1", "A"))
	expectErr(t, err, "Display ID already exists", conflict)

	_, err = s.contest.Create(ctx, ownAdmin, contestInput("nope", "B"))
	expectErr(t, err, "Contest does not exist", notFound)

	_, err = s.contest.Create(ctx, otherAdmin, contestInput("c1", "B"))
	expectErr(t, err, "Contest does not exist", notFound)

	req := contestInput("c1", "B")
	req.RuleType = model.RuleOI
	req.TestCaseScore[0].Score = 10
	_, err = s.contest.Create(ctx, ownAdmin, req)
	expectErr(t, err, "Invalid rule type", badRequest)
}

func TestContestQuizGetListUpdate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	seedContest(t, s.db, underway("c1"))

	a, err := s.contest.Create(ctx, ownAdmin, contestInput("c1", "A"))
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	req := contestInput("c1", "B")
	req.Title = "Shortest path"
	if _, err := s.contest.Create(ctx, ownAdmin, req); err != nil {
		t.Fatalf("Create B: %v", err)
	}

	if _, err := s.contest.Get(ctx, ownAdmin, a.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	_, err = s.contest.Get(ctx, otherAdmin, a.ID)
	expectErr(t, err, "Contest does not exist", notFound)

	_, err = s.contest.List(ctx, ownAdmin, ListContestQuizzesParams{})
	expectErr(t, err, "Contest id is required", badRequest)

	page, err := s.contest.List(ctx, ownAdmin, ListContestQuizzesParams{ContestID: "c1", Keyword: "path"})
	if err != nil || page.Total != 1 || page.Results[0].DisplayID != "B" {
		t.Fatalf("title keyword list = %+v, %v", page, err)
	}
	// contest listings do not match display ids
	page, err = s.contest.List(ctx, ownAdmin, ListContestQuizzesParams{ContestID: "c1", Keyword: "B"})
	if err != nil || page.Total != 1 || page.Results[0].DisplayID != "A" {
		t.Fatalf("keyword matched display id: %+v, %v", page, err)
	}

	edit := EditContestQuizRequest{ID: a.ID, ContestID: "c1", QuizInput: sampleInput("B")}
	_, err = s.contest.Update(ctx, ownAdmin, edit)
	expectErr(t, err, "Display ID already exists", conflict)

	edit.DisplayID = "A2"
	updated, err := s.contest.Update(ctx, ownAdmin, edit)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DisplayID != "A2" || *updated.ContestID != "c1" {
		t.Fatalf("update not applied: %+v", updated)
	}

	seedContest(t, s.db, underway("c2"))
	edit.ContestID = "c2"
	_, err = s.contest.Update(ctx, ownAdmin, edit)
	expectErr(t, err, "Quiz does not exist", notFound)
}

func TestContestQuizDelete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	seedContest(t, s.db, underway("c1"))

	used, err := s.contest.Create(ctx, ownAdmin, contestInput("c1", "A"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	unused, err := s.contest.Create(ctx, ownAdmin, contestInput("c1", "B"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedSubmission(t, s.db, used.ID)

	err = s.contest.Delete(ctx, ownAdmin, used.ID)
	expectErr(t, err, "Can't delete the quiz as it has submissions", conflict)

	if err := s.contest.Delete(ctx, ownAdmin, unused.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = s.contest.Delete(ctx, ownAdmin, unused.ID)
	expectErr(t, err, "Quiz does not exist", notFound)

	global, err := s.global.Create(ctx, ownAdmin, sampleInput("G"))
	if err != nil {
		t.Fatalf("Create global: %v", err)
	}
	err = s.contest.Delete(ctx, ownAdmin, global.ID)
	expectErr(t, err, "Quiz does not exist", notFound)
}

func TestMakePublic(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	seedContest(t, s.db, underway("c1"))

	src, err := s.contest.Create(ctx, ownAdmin, contestInput("c1", "A"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE quizzes SET submission_number = 12, accepted_number = 5, statistic_info = '{"0": 5}' WHERE id = $1`, src.ID); err != nil {
		t.Fatalf("seed counters: %v", err)
	}

	pub, err := s.contest.MakePublic(ctx, ownAdmin, MakePublicRequest{ID: src.ID, DisplayID: "P-100"})
	if err != nil {
		t.Fatalf("MakePublic: %v", err)
	}

	got, err := s.quizzes.FindByID(ctx, pub.ID)
	if err != nil {
		t.Fatalf("FindByID clone: %v", err)
	}
	if got.ID == src.ID || got.DisplayID != "P-100" || got.ContestID != nil {
		t.Fatalf("clone identity wrong: %+v", got)
	}
	if got.Visible || !got.IsPublic {
		t.Fatalf("clone must start hidden: visible=%v is_public=%v", got.Visible, got.IsPublic)
	}
	if got.SubmissionNumber != 0 || got.AcceptedNumber != 0 || len(got.StatisticInfo) != 0 {
		t.Fatalf("counters not reset: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "math" {
		t.Fatalf("tags not copied: %v", got.Tags)
	}

	source, _ := s.quizzes.FindByID(ctx, src.ID)
	if !source.IsPublic || source.SubmissionNumber != 12 {
		t.Fatalf("source should be flagged and otherwise untouched: %+v", source)
	}

	_, err = s.contest.MakePublic(ctx, ownAdmin, MakePublicRequest{ID: src.ID, DisplayID: "P-101"})
	expectErr(t, err, "Already be a public quiz", badRequest)

	_, err = s.contest.MakePublic(ctx, ownAdmin, MakePublicRequest{ID: src.ID, DisplayID: "P-100"})
	expectErr(t, err, "Duplicate display ID", conflict)

	_, err = s.contest.MakePublic(ctx, ownAdmin, MakePublicRequest{ID: "missing", DisplayID: "P-102"})
	expectErr(t, err, "Quiz does not exist", notFound)

	_, err = s.contest.MakePublic(ctx, ownAdmin, MakePublicRequest{ID: pub.ID, DisplayID: "P-103"})
	expectErr(t, err, "Already be a public quiz", badRequest)
}

func TestAddFromPublic(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	seedContest(t, s.db, underway("c1"))
	ended := underway("old")
	ended.Start, ended.End = time.Now().UTC().Add(-3*time.Hour), time.Now().UTC().Add(-2*time.Hour)
	seedContest(t, s.db, ended)

	src, err := s.global.Create(ctx, ownAdmin, sampleInput("G-1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	q, err := s.contest.AddFromPublic(ctx, ownAdmin, AddFromPublicRequest{ContestID: "c1", QuizID: src.ID, DisplayID: "A"})
	if err != nil {
		t.Fatalf("AddFromPublic: %v", err)
	}
	got, err := s.quizzes.FindByDisplayID(ctx, "A", strPtr("c1"))
	if err != nil {
		t.Fatalf("find copy: %v", err)
	}
	if got.ID != q.ID || !got.Visible || got.SubmissionNumber != 0 || len(got.Tags) != 1 {
		t.Fatalf("copy wrong: %+v", got)
	}

	_, err = s.contest.AddFromPublic(ctx, ownAdmin, AddFromPublicRequest{ContestID: "c1", QuizID: src.ID, DisplayID: "A"})
	expectErr(t, err, "Duplicate display id in this contest", conflict)

	_, err = s.contest.AddFromPublic(ctx, ownAdmin, AddFromPublicRequest{ContestID: "old", QuizID: src.ID, DisplayID: "A"})
	expectErr(t, err, "Contest has ended", conflict)

	_, err = s.contest.AddFromPublic(ctx, ownAdmin, AddFromPublicRequest{ContestID: "nope", QuizID: src.ID, DisplayID: "B"})
	expectErr(t, err, "Contest or Quiz does not exist", notFound)

	_, err = s.contest.AddFromPublic(ctx, ownAdmin, AddFromPublicRequest{ContestID: "c1", QuizID: "nope", DisplayID: "B"})
	expectErr(t, err, "Contest or Quiz does not exist", notFound)
}
