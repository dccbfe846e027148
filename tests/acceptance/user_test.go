package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmorandi/auth-backend/internal/dto"
)

func (s *Suite) promoteToAdmin(userID string) {
	_, err := s.Postgres.DB.Exec(
		`UPDATE users SET roles = roles || '{admin}' WHERE id = $1`,
		userID,
	)
	s.Require().NoError(err)
}

func (s *Suite) authorizedRequest(method, path, token string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.BaseURL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) decodeUser(resp *http.Response) dto.UserResponse {
	env := s.decodeEnvelope(resp)
	s.Require().True(env.Success)

	var user dto.UserResponse
	s.Require().NoError(json.Unmarshal(env.Data, &user))
	return user
}

func (s *Suite) TestListUsers() {
	first := s.register("one@example.com", "one", "Password123")
	s.register("two@example.com", "two", "Password123")

	resp := s.authorizedRequest("GET", "/api/v1/users", first.Tokens.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	var users []dto.UserResponse
	s.Require().NoError(json.Unmarshal(env.Data, &users))
	s.Len(users, 2)
}

func (s *Suite) TestListUsersByRole() {
	first := s.register("admin@example.com", "admin", "Password123")
	s.register("plain@example.com", "plain", "Password123")
	s.promoteToAdmin(first.User.ID)

	resp := s.authorizedRequest("GET", "/api/v1/users?role=admin", first.Tokens.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	var users []dto.UserResponse
	s.Require().NoError(json.Unmarshal(env.Data, &users))
	s.Require().Len(users, 1)
	s.Equal("admin@example.com", users[0].Email)
}

func (s *Suite) TestListUsers_Unauthenticated() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetUser() {
	payload := s.register("target@example.com", "target", "Password123")

	resp := s.authorizedRequest("GET", "/api/v1/users/"+payload.User.ID, payload.Tokens.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	user := s.decodeUser(resp)
	s.Equal("target@example.com", user.Email)
}

func (s *Suite) TestGetUser_Unauthenticated() {
	payload := s.register("private@example.com", "private", "Password123")

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/users/"+payload.User.ID, nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetUser_NotFound() {
	payload := s.register("seeker@example.com", "seeker", "Password123")

	resp := s.authorizedRequest("GET", "/api/v1/users/00000000-0000-0000-0000-000000000000", payload.Tokens.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestUpdateUser() {
	payload := s.register("editable@example.com", "editable", "Password123")

	firstName := "Grace"
	resp := s.authorizedRequest("PUT", "/api/v1/users/"+payload.User.ID, payload.Tokens.AccessToken, dto.UpdateUserRequest{
		FirstName: &firstName,
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	user := s.decodeUser(resp)
	s.Require().NotNil(user.FirstName)
	s.Equal("Grace", *user.FirstName)
	s.Equal("editable@example.com", user.Email)
}

func (s *Suite) TestUpdateUser_EmailTaken() {
	s.register("holder@example.com", "holder", "Password123")
	payload := s.register("mover@example.com", "mover", "Password123")

	email := "holder@example.com"
	resp := s.authorizedRequest("PUT", "/api/v1/users/"+payload.User.ID, payload.Tokens.AccessToken, dto.UpdateUserRequest{
		Email: &email,
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestDeleteUser() {
	admin := s.register("remover@example.com", "remover", "Password123")
	victim := s.register("victim@example.com", "victim", "Password123")

	resp := s.authorizedRequest("DELETE", "/api/v1/users/"+victim.User.ID, admin.Tokens.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	// The deleted user's session is gone too
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)
	meReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", victim.Tokens.AccessToken))
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp.StatusCode)
}

func (s *Suite) TestAddRole() {
	payload := s.register("promotee@example.com", "promotee", "Password123")

	resp := s.authorizedRequest("POST", "/api/v1/users/"+payload.User.ID+"/roles", payload.Tokens.AccessToken, dto.RoleRequest{
		Role: "moderator",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	user := s.decodeUser(resp)
	s.ElementsMatch([]string{"user", "moderator"}, rolesAsStrings(user))
}

func (s *Suite) TestAddRole_AlreadyHeld() {
	payload := s.register("heldrole@example.com", "heldrole", "Password123")

	resp := s.authorizedRequest("POST", "/api/v1/users/"+payload.User.ID+"/roles", payload.Tokens.AccessToken, dto.RoleRequest{
		Role: "user",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestRemoveRole_LastRole() {
	payload := s.register("lastrole@example.com", "lastrole", "Password123")

	resp := s.authorizedRequest("DELETE", "/api/v1/users/"+payload.User.ID+"/roles", payload.Tokens.AccessToken, dto.RoleRequest{
		Role: "user",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestRemoveRole_AdminKeepsOtherRole() {
	payload := s.register("twohats@example.com", "twohats", "Password123")
	s.promoteToAdmin(payload.User.ID)

	resp := s.authorizedRequest("DELETE", "/api/v1/users/"+payload.User.ID+"/roles", payload.Tokens.AccessToken, dto.RoleRequest{
		Role: "admin",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	user := s.decodeUser(resp)
	s.Equal([]string{"user"}, rolesAsStrings(user))
}

func (s *Suite) TestSendEmail_RequiresAdmin() {
	payload := s.register("sender@example.com", "sender", "Password123")

	resp := s.authorizedRequest("POST", "/api/v1/email/send", payload.Tokens.AccessToken, dto.SendEmailRequest{
		To:      []string{"someone@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hello</p>",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
