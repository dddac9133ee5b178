package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.UserResponse)
	return res, args.Error(1)
}

func (m *mockUserService) GetByID(ctx context.Context, id uint) (*dto.UserResponse, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*dto.UserResponse)
	return res, args.Error(1)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*dto.UserResponse, error) {
	args := m.Called(ctx, email)
	res, _ := args.Get(0).(*dto.UserResponse)
	return res, args.Error(1)
}

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Create(ctx context.Context, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.ChatSessionResponse)
	return res, args.Error(1)
}

func (m *mockSessionService) GetByID(ctx context.Context, id uint) (*dto.ChatSessionDetailResponse, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*dto.ChatSessionDetailResponse)
	return res, args.Error(1)
}

func (m *mockSessionService) List(ctx context.Context, userId *uint) ([]*dto.ChatSessionResponse, error) {
	args := m.Called(ctx, userId)
	res, _ := args.Get(0).([]*dto.ChatSessionResponse)
	return res, args.Error(1)
}

type mockMessageService struct{ mock.Mock }

func (m *mockMessageService) Create(ctx context.Context, req *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.MessageResponse)
	return res, args.Error(1)
}

func (m *mockMessageService) ListBySession(ctx context.Context, sessionId uint) ([]*dto.MessageResponse, error) {
	args := m.Called(ctx, sessionId)
	res, _ := args.Get(0).([]*dto.MessageResponse)
	return res, args.Error(1)
}

type mockChatService struct{ mock.Mock }

func (m *mockChatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*dto.ChatResponse)
	return res, args.Error(1)
}

type fixture struct {
	app      *fiber.App
	users    *mockUserService
	sessions *mockSessionService
	messages *mockMessageService
	chat     *mockChatService
}

func newFixture(t *testing.T, chatMiddlewares ...fiber.Handler) *fixture {
	t.Helper()
	f := &fixture{
		app:      fiber.New(),
		users:    &mockUserService{},
		sessions: &mockSessionService{},
		messages: &mockMessageService{},
		chat:     &mockChatService{},
	}
	f.app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	api := f.app.Group("/api/chat")
	NewUserController(f.users).RegisterRoutes(api)
	NewChatSessionController(f.sessions, f.messages).RegisterRoutes(api)
	NewMessageController(f.messages).RegisterRoutes(api)
	NewChatController(f.chat).RegisterRoutes(api, chatMiddlewares...)
	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.sessions.AssertExpectations(t)
		f.messages.AssertExpectations(t)
		f.chat.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var env serverutils.BaseResponse[any]
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.False(t, env.Success)
	return env.Message
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	f.users.On("Create", mock.Anything, &dto.CreateUserRequest{Name: "Ada Lovelace", Email: "ada@x.com"}).
		Return(&dto.UserResponse{Id: 1, FirstName: "Ada", LastName: "Lovelace", Name: "Ada Lovelace", Email: "ada@x.com"}, nil)

	resp, raw := f.do(t, "POST", "/api/chat/users/", `{"name": "Ada Lovelace", "email": "ada@x.com"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id": 1, "first_name": "Ada", "last_name": "Lovelace", "name": "Ada Lovelace", "email": "ada@x.com"}`, string(raw))
}

func TestCreateUserWithoutTrailingSlash(t *testing.T) {
	f := newFixture(t)
	f.users.On("Create", mock.Anything, mock.Anything).Return(&dto.UserResponse{Id: 2}, nil)

	resp, _ := f.do(t, "POST", "/api/chat/users", `{"name": "Grace", "email": "g@x.com"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, "POST", "/api/chat/users/", `{"name": "Ada"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, errorMessage(t, raw), "email")
}

func TestCreateUserMalformedBody(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, "POST", "/api/chat/users/", `{"name": `)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", errorMessage(t, raw))
}

func TestCreateUserStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.users.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	resp, raw := f.do(t, "POST", "/api/chat/users/", `{"name": "Ada", "email": "a@x.com"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", errorMessage(t, raw))
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByID", mock.Anything, uint(7)).Return(&dto.UserResponse{Id: 7, Name: "Ada"}, nil)
	f.users.On("GetByID", mock.Anything, uint(8)).Return(nil, dto.NewNotFoundError("User"))

	resp, _ := f.do(t, "GET", "/api/chat/users/7", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := f.do(t, "GET", "/api/chat/users/8", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", errorMessage(t, raw))

	resp, _ = f.do(t, "GET", "/api/chat/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserByEmailUnescapesPath(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "ada@x.com").Return(&dto.UserResponse{Id: 3, Email: "ada@x.com"}, nil)

	resp, raw := f.do(t, "GET", "/api/chat/users/by-email/ada%40x.com", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"id":3`)
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.sessions.On("Create", mock.Anything, mock.MatchedBy(func(req *dto.CreateChatSessionRequest) bool {
		return req.UserId == 1 && req.Title == nil
	})).Return(&dto.ChatSessionResponse{Id: 5, UserId: 1, Title: "New Chat", CreatedAt: created}, nil)

	resp, raw := f.do(t, "POST", "/api/chat/sessions/", `{"user_id": 1}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id": 5, "user_id": 1, "title": "New Chat", "created_at": "2024-01-01T00:00:00Z"}`, string(raw))
}

func TestGetSessionIncludesMessages(t *testing.T) {
	f := newFixture(t)
	f.sessions.On("GetByID", mock.Anything, uint(5)).Return(&dto.ChatSessionDetailResponse{
		ChatSessionResponse: dto.ChatSessionResponse{Id: 5, UserId: 1, Title: "New Chat"},
		Messages:            []dto.MessageResponse{},
	}, nil)
	f.sessions.On("GetByID", mock.Anything, uint(6)).Return(nil, dto.NewNotFoundError("Session"))

	resp, raw := f.do(t, "GET", "/api/chat/sessions/5", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"messages":[]`)

	resp, raw = f.do(t, "GET", "/api/chat/sessions/6", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Session not found", errorMessage(t, raw))
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)
	f.sessions.On("List", mock.Anything, (*uint)(nil)).Return([]*dto.ChatSessionResponse{}, nil)
	f.sessions.On("List", mock.Anything, mock.MatchedBy(func(id *uint) bool { return id != nil && *id == 4 })).
		Return([]*dto.ChatSessionResponse{{Id: 9, UserId: 4}}, nil)

	resp, raw := f.do(t, "GET", "/api/chat/sessions/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))

	resp, raw = f.do(t, "GET", "/api/chat/sessions/?user_id=4", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(raw), "messages")

	resp, raw = f.do(t, "GET", "/api/chat/sessions/?user_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user_id", errorMessage(t, raw))
}

func TestListSessionMessages(t *testing.T) {
	f := newFixture(t)
	f.messages.On("ListBySession", mock.Anything, uint(5)).Return([]*dto.MessageResponse{
		{Id: 1, SessionId: 5, Sender: "user", Content: "Hello"},
		{Id: 2, SessionId: 5, Sender: "ai", Content: "Hi"},
	}, nil)

	resp, raw := f.do(t, "GET", "/api/chat/sessions/5/messages", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out []dto.MessageResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0].Sender)
}

func TestCreateMessage(t *testing.T) {
	f := newFixture(t)
	f.messages.On("Create", mock.Anything, &dto.CreateMessageRequest{SessionId: 5, Sender: "ai", Content: "Hi"}).
		Return(&dto.MessageResponse{Id: 3, SessionId: 5, Sender: "ai", Content: "Hi"}, nil)

	resp, _ := f.do(t, "POST", "/api/chat/messages/", `{"session_id": 5, "sender": "ai", "content": "Hi"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreateMessageRejectsUnknownSender(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, "POST", "/api/chat/messages/", `{"session_id": 5, "sender": "bot", "content": "Hi"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, errorMessage(t, raw), "sender")
}

func TestChatTurn(t *testing.T) {
	f := newFixture(t)
	f.chat.On("Chat", mock.Anything, mock.MatchedBy(func(req *dto.ChatRequest) bool {
		return req.UserId == 1 && req.SessionId == nil && req.Message == "Hello"
	})).Return(&dto.ChatResponse{SessionId: 10, Message: "Hi there"}, nil)

	resp, raw := f.do(t, "POST", "/api/chat/", `{"user_id": 1, "message": "Hello"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"session_id": 10, "message": "Hi there"}`, string(raw))
}

func TestChatTurnErrors(t *testing.T) {
	f := newFixture(t)
	f.chat.On("Chat", mock.Anything, mock.MatchedBy(func(req *dto.ChatRequest) bool { return req.UserId == 2 })).
		Return(nil, dto.NewNotFoundError("User"))
	f.chat.On("Chat", mock.Anything, mock.MatchedBy(func(req *dto.ChatRequest) bool { return req.UserId == 3 })).
		Return(nil, errors.New("tx aborted"))

	resp, raw := f.do(t, "POST", "/api/chat", `{"user_id": 2, "message": "Hello"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", errorMessage(t, raw))

	resp, raw = f.do(t, "POST", "/api/chat", `{"user_id": 3, "message": "Hello"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", errorMessage(t, raw))

	resp, _ = f.do(t, "POST", "/api/chat", `{"user_id": 3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestChatRouteMiddlewareRunsFirst(t *testing.T) {
	blocked := func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
	}
	f := newFixture(t, blocked)

	resp, raw := f.do(t, "POST", "/api/chat/", `{"user_id": 1, "message": "Hello"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests", errorMessage(t, raw))

	// Other routes are not behind the chat middleware.
	f.users.On("GetByID", mock.Anything, uint(1)).Return(&dto.UserResponse{Id: 1}, nil)
	resp, _ = f.do(t, "GET", "/api/chat/users/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
