package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/ragscope/internal/views"
)

const sessionCookie = "ragscope_session"

// sessionIdle is how long an unused session is kept.
const sessionIdle = 30 * time.Minute

type sessionKey struct{}

// session holds the interactive views of one browser: the ask form with its
// last answer and the corpus view with its chosen file. A page load remounts
// them unless a request on them is still outstanding.
type session struct {
	mu     sync.Mutex
	ask    *views.QuestionForm
	corpus *views.Corpus
	seen   time.Time
}

// questionForm returns the session's form, creating it if needed. With
// remount, an idle form is replaced by a fresh one.
func (s *session) questionForm(remount bool, newForm func() *views.QuestionForm) *views.QuestionForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ask == nil || (remount && !s.ask.Busy()) {
		s.ask = newForm()
	}
	return s.ask
}

// corpusView is questionForm for the corpus view. fresh reports that the view
// was created by this call and has not loaded yet.
func (s *session) corpusView(remount bool, newCorpus func() *views.Corpus) (v *views.Corpus, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corpus == nil || (remount && !s.corpus.Uploading()) {
		s.corpus = newCorpus()
		fresh = true
	}
	return s.corpus, fresh
}

func (s *session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.ask != nil && s.ask.Busy()) || (s.corpus != nil && s.corpus.Uploading())
}

// sessions maps session cookies to per-browser view state.
type sessions struct {
	idle time.Duration
	now  func() time.Time

	mu   sync.Mutex
	byID map[string]*session
}

func newSessions(idle time.Duration) *sessions {
	return &sessions{idle: idle, now: time.Now, byID: make(map[string]*session)}
}

// get returns the session for id. A missing or unknown id starts a new
// session; created reports that and the returned id must be sent back.
func (st *sessions) get(id string) (sess *session, newID string, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.pruneLocked(now)
	if s, ok := st.byID[id]; ok && id != "" {
		s.mu.Lock()
		s.seen = now
		s.mu.Unlock()
		return s, id, false
	}
	newID = uuid.NewString()
	sess = &session{seen: now}
	st.byID[newID] = sess
	return sess, newID, true
}

// pruneLocked drops idle sessions that have nothing in flight.
func (st *sessions) pruneLocked(now time.Time) {
	for id, s := range st.byID {
		s.mu.Lock()
		idle := now.Sub(s.seen) > st.idle
		s.mu.Unlock()
		if idle && !s.busy() {
			delete(st.byID, id)
		}
	}
}

func (st *sessions) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byID)
}

// attach puts the caller's session in the request context, setting the
// cookie when a new session starts.
func (st *sessions) attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
		sess, id, created := st.get(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the request's session. Without one, the caller gets a
// throwaway session so handlers still work when mounted bare.
func sessionFrom(ctx context.Context) *session {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s
	}
	return &session{}
}
