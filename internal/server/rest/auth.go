package rest

import (
	"mime"
	"net/http"

	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	user, err := s.auth.Register(r.Context(), models.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusCreated, user)
	return nil
}

// handleLogin accepts an OAuth2 password form or the same fields as JSON.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(headerContentType))
	if mediaType == "application/json" {
		if err := decodeJSON(w, r, &req); err != nil {
			return err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return errUnprocessable("invalid form body", err)
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if req.Username == "" || req.Password == "" {
		return errUnprocessable("username and password are required", nil)
	}

	token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	return nil
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) error {
	msg, err := s.auth.ConfirmEmail(r.Context(), chi.URLParam(r, paramToken))
	if err != nil {
		return err
	}
	respondMessage(w, msg)
	return nil
}

func (s *Server) handleRequestEmail(w http.ResponseWriter, r *http.Request) error {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	msg, err := s.auth.RequestEmail(r.Context(), req.Email)
	if err != nil {
		return err
	}
	respondMessage(w, msg)
	return nil
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) error {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	msg, err := s.auth.RequestPasswordReset(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	respondMessage(w, msg)
	return nil
}

func (s *Server) handleConfirmResetPassword(w http.ResponseWriter, r *http.Request) error {
	msg, err := s.auth.ConfirmPasswordReset(r.Context(), chi.URLParam(r, paramToken))
	if err != nil {
		return err
	}
	respondMessage(w, msg)
	return nil
}
