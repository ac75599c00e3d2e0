package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"budgetiq/internal/auth"
	"budgetiq/internal/core"
	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := core.ValidateSignup(req.Name, req.Email, req.Password); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.FromContext(r.Context()).Error("password hashing failed", log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		log.FromContext(r.Context()).Error("user creation failed", log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := s.tokens.VerificationToken(user.Email)
	if err != nil {
		log.FromContext(r.Context()).Error("verification token mint failed", log.FieldError, err, log.FieldEmail, user.Email)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	verifyURL := s.backendURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	s.mailer.SendVerification(user.Email, verifyURL)

	log.FromContext(r.Context()).Info("user signed up", log.FieldUserID, user.ID, log.FieldEmail, user.Email)
	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "Account created! A verification link has been sent to your email.",
	})
}

// handleVerifyEmail lands the link from the verification email. Every
// outcome redirects back to the frontend login page with status params.
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	redirect := func(status, message string) {
		params := url.Values{}
		params.Set("verified", status)
		params.Set("message", message)
		http.Redirect(w, r, s.frontendURL+"/login?"+params.Encode(), http.StatusFound)
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		redirect("error", "Invalid verification token")
		return
	}

	email, err := s.tokens.Verify(token, auth.PurposeEmailVerify)
	if err != nil {
		if errors.Is(err, auth.ErrWrongPurpose) {
			redirect("error", "Invalid verification token")
			return
		}
		redirect("error", "Invalid or expired verification link")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		redirect("error", "User not found")
		return
	}
	if user.IsVerified {
		redirect("already", "Email already verified")
		return
	}

	if err := s.store.MarkUserVerified(r.Context(), user.ID); err != nil {
		log.FromContext(r.Context()).Error("marking user verified failed", log.FieldError, err, log.FieldUserID, user.ID)
		redirect("error", "Invalid or expired verification link")
		return
	}

	log.FromContext(r.Context()).Info("email verified", log.FieldUserID, user.ID, log.FieldEmail, user.Email)
	redirect("success", "Email verified successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !user.IsVerified {
		writeDetail(w, http.StatusForbidden, "Please verify your email before logging in. Check your email for the verification link.")
		return
	}

	token, err := s.tokens.AccessToken(user.Email)
	if err != nil {
		log.FromContext(r.Context()).Error("access token mint failed", log.FieldError, err, log.FieldEmail, user.Email)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.FromContext(r.Context()).Info("user logged in", log.FieldUserID, user.ID)
	writeJSON(w, http.StatusOK, tokenView{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserView(user),
	})
}

// handleForgotPassword answers identically whether or not the account
// exists, so the endpoint cannot be used to probe registered emails.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err == nil {
		token, mintErr := s.tokens.ResetToken(user.Email)
		if mintErr != nil {
			log.FromContext(r.Context()).Error("reset token mint failed", log.FieldError, mintErr, log.FieldEmail, user.Email)
		} else {
			resetURL := s.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
			s.mailer.SendPasswordReset(user.Email, resetURL)
		}
	}

	writeMessage(w, "If this email is registered, a password reset link has been sent.")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, err := s.tokens.Verify(req.Token, auth.PurposePasswordReset)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if len(req.NewPassword) < 6 || len(req.NewPassword) > 128 {
		writeDetail(w, http.StatusBadRequest, "Password must be between 6 and 128 characters")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		log.FromContext(r.Context()).Error("password hashing failed", log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := s.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		log.FromContext(r.Context()).Error("password update failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	log.FromContext(r.Context()).Info("password reset", log.FieldUserID, user.ID)
	writeMessage(w, "Password reset successfully. You can now log in with your new password.")
}
