package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/internal/repository/unitofwork"
)

// memStore is an append-only in-memory database. Rows are never updated or
// deleted by the services, so rolling back only needs the row counts taken
// at Begin.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	users    []*entity.User
	sessions []*entity.ChatSession
	messages []*entity.Message

	failSessionCreate error
	failMessageSender map[string]error
	failFind          error
}

func newMemStore() *memStore {
	return &memStore{failMessageSender: map[string]error{}}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.sessions), len(s.messages)
}

func (s *memStore) seedUser(first, last, email string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &entity.User{Id: s.id(), FirstName: first, LastName: last, Email: email}
	s.users = append(s.users, u)
	return u
}

func (s *memStore) seedSession(userId uint, title string, createdAt time.Time) *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := &entity.ChatSession{Id: s.id(), UserId: userId, Title: title, CreatedAt: createdAt}
	s.sessions = append(s.sessions, cs)
	return cs
}

func (s *memStore) messagesOf(sessionId uint) []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Message
	for _, m := range s.messages {
		if m.SessionId == sessionId {
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

type snapshot struct {
	users, sessions, messages int
}

type memUnitOfWork struct {
	store *memStore
	snap  *snapshot
}

func (u *memUnitOfWork) Begin(ctx context.Context) error {
	if u.snap != nil {
		return errors.New("transaction already started")
	}
	users, sessions, messages := u.store.counts()
	u.snap = &snapshot{users: users, sessions: sessions, messages: messages}
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if u.snap == nil {
		return errors.New("no transaction to commit")
	}
	u.snap = nil
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	if u.snap == nil {
		return nil
	}
	s := u.store
	s.mu.Lock()
	s.users = s.users[:u.snap.users]
	s.sessions = s.sessions[:u.snap.sessions]
	s.messages = s.messages[:u.snap.messages]
	s.mu.Unlock()
	u.snap = nil
	return nil
}

func (u *memUnitOfWork) UserRepository() contract.UserRepository {
	return &memUserRepo{store: u.store}
}

func (u *memUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &memSessionRepo{store: u.store}
}

func (u *memUnitOfWork) MessageRepository() contract.MessageRepository {
	return &memMessageRepo{store: u.store}
}

// query captures the specifications the fake understands.
type query struct {
	id        *uint
	email     *string
	userId    *uint
	sessionId *uint
	orders    []specification.OrderBy
}

func parse(specs []specification.Specification) query {
	var q query
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			q.id = &s.ID
		case specification.ByEmail:
			q.email = &s.Email
		case specification.UserOwnedBy:
			q.userId = &s.UserID
		case specification.ByChatSessionID:
			q.sessionId = &s.ChatSessionID
		case specification.OrderBy:
			q.orders = append(q.orders, s)
		}
	}
	return q
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user.Id = r.store.id()
	c := *user
	r.store.users = append(r.store.users, &c)
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	all, err := r.find(specs)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memUserRepo) find(specs []specification.Specification) ([]*entity.User, error) {
	if r.store.failFind != nil {
		return nil, r.store.failFind
	}
	q := parse(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.User
	for _, u := range r.store.users {
		if q.id != nil && u.Id != *q.id {
			continue
		}
		if q.email != nil && u.Email != *q.email {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	return out, nil
}

type memSessionRepo struct{ store *memStore }

func (r *memSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failSessionCreate != nil {
		return r.store.failSessionCreate
	}
	if !r.userExists(session.UserId) {
		return errors.New("create chat session: foreign_key_violation")
	}
	session.Id = r.store.id()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	c := *session
	r.store.sessions = append(r.store.sessions, &c)
	return nil
}

func (r *memSessionRepo) userExists(id uint) bool {
	for _, u := range r.store.users {
		if u.Id == id {
			return true
		}
	}
	return false
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	if r.store.failFind != nil {
		return nil, r.store.failFind
	}
	q := parse(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		if q.id != nil && s.Id != *q.id {
			continue
		}
		if q.userId != nil && s.UserId != *q.userId {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(q.orders, func(field string) int {
			switch {
			case strings.Contains(field, "created_at"):
				return out[i].CreatedAt.Compare(out[j].CreatedAt)
			default:
				return compareUint(out[i].Id, out[j].Id)
			}
		})
	})
	return out, nil
}

type memMessageRepo struct{ store *memStore }

func (r *memMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.failMessageSender[message.Sender]; err != nil {
		return err
	}
	exists := false
	for _, s := range r.store.sessions {
		if s.Id == message.SessionId {
			exists = true
		}
	}
	if !exists {
		return errors.New("create message: foreign_key_violation")
	}
	message.Id = r.store.id()
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	c := *message
	r.store.messages = append(r.store.messages, &c)
	return nil
}

func (r *memMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	if r.store.failFind != nil {
		return nil, r.store.failFind
	}
	q := parse(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.store.messages {
		if q.id != nil && m.Id != *q.id {
			continue
		}
		if q.sessionId != nil && m.SessionId != *q.sessionId {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(q.orders, func(field string) int {
			switch {
			case strings.Contains(field, "timestamp"):
				return out[i].Timestamp.Compare(out[j].Timestamp)
			default:
				return compareUint(out[i].Id, out[j].Id)
			}
		})
	})
	return out, nil
}

// less walks the order clauses until one of them separates the two rows.
func less(orders []specification.OrderBy, cmp func(field string) int) bool {
	for _, o := range orders {
		c := cmp(o.Field)
		if c == 0 {
			continue
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareUint(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type stubReplies struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubReplies) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	err      error
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return p.err
}

type logEntry struct {
	level   string
	module  string
	message string
	details map[string]interface{}
}

// recordingLogger keeps every entry for inspection.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, module: module, message: message, details: details})
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	l.record("debug", module, message, details)
}

func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.record("info", module, message, details)
}

func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.record("warn", module, message, details)
}

func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.record("error", module, message, details)
}

func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) find(level, message string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.message == message {
			return e, true
		}
	}
	return logEntry{}, false
}
