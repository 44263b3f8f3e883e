package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/views"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// blockingQuery answers once release is closed.
type blockingQuery struct {
	started chan struct{}
	release chan struct{}
}

func (b blockingQuery) Query(ctx context.Context, _ *models.QueryRequest) (*models.RAGResponse, error) {
	close(b.started)
	<-b.release
	return &models.RAGResponse{Answer: "done"}, nil
}

func TestSessions_getReusesKnownID(t *testing.T) {
	st := newSessions(time.Minute)
	s1, id, created := st.get("")
	if !created || id == "" {
		t.Fatalf("get(\"\") = %q created=%v, want a new session", id, created)
	}
	s2, id2, created := st.get(id)
	if created || id2 != id || s2 != s1 {
		t.Errorf("get(%q) returned a different session", id)
	}
	if _, other, created := st.get("unknown"); !created || other == "unknown" {
		t.Errorf("unknown id should start a new session, got %q created=%v", other, created)
	}
}

func TestSessions_prunesIdle(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	st := newSessions(time.Minute)
	st.now = c.now
	_, idle, _ := st.get("")
	c.t = c.t.Add(30 * time.Second)
	_, active, _ := st.get("")

	c.t = c.t.Add(45 * time.Second)
	if _, id, created := st.get(active); created || id != active {
		t.Error("active session was pruned")
	}
	if _, _, created := st.get(idle); !created {
		t.Error("idle session was kept")
	}
	if n := st.len(); n != 2 {
		t.Errorf("sessions = %d, want active + replacement", n)
	}
}

func TestSessions_keepsBusySessionPastIdle(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	st := newSessions(time.Minute)
	st.now = c.now
	sess, id, _ := st.get("")

	q := blockingQuery{started: make(chan struct{}), release: make(chan struct{})}
	f := sess.questionForm(false, func() *views.QuestionForm {
		return views.NewQuestionForm(q, nil, views.DefaultQuestionDefaults)
	})
	f.SetQuestion("What is parsing?")
	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-q.started

	c.t = c.t.Add(time.Hour)
	if got, _, created := st.get(id); created || got != sess {
		t.Error("session with a query in flight was pruned")
	}
	if again := sess.questionForm(true, func() *views.QuestionForm { t.Error("busy form remounted"); return nil }); again != f {
		t.Error("remount replaced a busy form")
	}
	close(q.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if fresh := sess.questionForm(true, func() *views.QuestionForm {
		return views.NewQuestionForm(q, nil, views.DefaultQuestionDefaults)
	}); fresh == f {
		t.Error("idle form was not remounted")
	}
}

func TestSessions_attachSetsCookieOnce(t *testing.T) {
	st := newSessions(time.Minute)
	var seen []*session
	h := st.attach(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, sessionFrom(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/questions", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/questions", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("known session should not reset the cookie")
	}
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Error("requests with the same cookie got different sessions")
	}
}
