package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmorandi/auth-backend/internal/dto"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authPayload struct {
	User   dto.UserResponse `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	} `json:"tokens"`
}

func (s *Suite) postJSON(path string, body interface{}) *http.Response {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewBuffer(raw))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) decodeEnvelope(resp *http.Response) envelope {
	var env envelope
	err := json.NewDecoder(resp.Body).Decode(&env)
	s.Require().NoError(err)
	return env
}

func (s *Suite) decodeAuth(resp *http.Response) authPayload {
	env := s.decodeEnvelope(resp)
	s.Require().True(env.Success)

	var payload authPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	return payload
}

func (s *Suite) register(email, username, password string) authPayload {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return s.decodeAuth(resp)
}

func (s *Suite) TestRegister_Success() {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "tester",
		Password: "Password123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	payload := s.decodeAuth(resp)
	s.NotEmpty(payload.Tokens.AccessToken)
	s.NotEmpty(payload.Tokens.RefreshToken)
	s.Equal("Bearer", payload.Tokens.TokenType)
	s.NotZero(payload.Tokens.ExpiresIn)
	s.Equal("test@example.com", payload.User.Email)
	s.Equal("tester", payload.User.Username)
	s.NotEmpty(payload.User.ID)
	s.Equal([]string{"user"}, rolesAsStrings(payload.User))
}

func rolesAsStrings(user dto.UserResponse) []string {
	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}
	return roles
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("duplicate@example.com", "first", "Password123")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "duplicate@example.com",
		Username: "second",
		Password: "Password123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	s.False(env.Success)
	s.Contains(env.Message, "already exists")
}

func (s *Suite) TestRegister_DuplicateEmailDifferentCase() {
	s.register("casefold@example.com", "casefold", "Password123")

	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "CaseFold@Example.COM",
		Username: "casefold2",
		Password: "Password123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestRegister_InvalidEmail() {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "invalid-email",
		Username: "tester",
		Password: "Password123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_ShortPassword() {
	resp := s.postJSON("/api/v1/auth/register", dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "tester",
		Password: "short",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register("login@example.com", "login", "Password123")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "Password123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	payload := s.decodeAuth(resp)
	s.NotEmpty(payload.Tokens.AccessToken)
	s.Equal("Bearer", payload.Tokens.TokenType)
	s.Equal("login@example.com", payload.User.Email)
}

func (s *Suite) TestLogin_UnknownAndWrongPasswordLookAlike() {
	s.register("known@example.com", "known", "CorrectPassword123")

	respUnknown := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "unknown@example.com",
		Password: "Password123",
	})
	defer respUnknown.Body.Close()
	s.Equal(http.StatusUnauthorized, respUnknown.StatusCode)
	envUnknown := s.decodeEnvelope(respUnknown)

	respWrong := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "known@example.com",
		Password: "WrongPassword123",
	})
	defer respWrong.Body.Close()
	s.Equal(http.StatusUnauthorized, respWrong.StatusCode)
	envWrong := s.decodeEnvelope(respWrong)

	s.Equal(envUnknown.Message, envWrong.Message)
}

func (s *Suite) TestGetMe_Success() {
	payload := s.register("getme@example.com", "getme", "Password123")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", payload.Tokens.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	var user dto.UserResponse
	s.Require().NoError(json.Unmarshal(env.Data, &user))

	s.Equal("getme@example.com", user.Email)
	s.NotEmpty(user.ID)
	s.True(user.IsActive)
}

func (s *Suite) TestGetMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_InvalidToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_Success() {
	payload := s.register("refresh@example.com", "refresh", "Password123")

	resp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshRequest{
		RefreshToken: payload.Tokens.RefreshToken,
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	s.True(env.Success)
	s.Contains(string(env.Data), "access_token")
}

func (s *Suite) TestRefresh_SingleUse() {
	payload := s.register("rotate@example.com", "rotate", "Password123")

	first := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshRequest{
		RefreshToken: payload.Tokens.RefreshToken,
	})
	first.Body.Close()
	s.Equal(http.StatusOK, first.StatusCode)

	second := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshRequest{
		RefreshToken: payload.Tokens.RefreshToken,
	})
	defer second.Body.Close()
	s.Equal(http.StatusUnauthorized, second.StatusCode)
}

func (s *Suite) TestRefresh_NeverIssuedToken() {
	resp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshRequest{
		RefreshToken: "never-issued-token",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_MissingToken() {
	resp := s.postJSON("/api/v1/auth/refresh-token", map[string]string{})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogout_Success() {
	payload := s.register("logout@example.com", "logout", "Password123")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", payload.Tokens.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	// The access token row is gone; the session is over
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", payload.Tokens.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()

	s.Equal(http.StatusUnauthorized, meResp.StatusCode)
}

func (s *Suite) TestLogout_NoToken() {
	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestCompleteFlow() {
	payload := s.register("complete@example.com", "complete", "Password123")
	accessToken := payload.Tokens.AccessToken

	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	refreshResp := s.postJSON("/api/v1/auth/refresh-token", dto.RefreshRequest{
		RefreshToken: payload.Tokens.RefreshToken,
	})
	defer refreshResp.Body.Close()
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	env := s.decodeEnvelope(refreshResp)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &tokens))

	logoutReq, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	logoutReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tokens.AccessToken))
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	s.Require().NoError(err)
	defer logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)
}
