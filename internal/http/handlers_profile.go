package http

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"budgetiq/internal/core"
	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

// allowedAvatarTypes maps accepted upload content types to the extension
// used when the filename carries none.
var allowedAvatarTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type profileUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserView(currentUser(r.Context())))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := user.Name
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}
	email := user.Email
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		email = strings.TrimSpace(*req.Email)
	}

	if len(name) < 2 || len(name) > 100 {
		writeDetail(w, http.StatusBadRequest, core.ErrNameTooShort.Error())
		return
	}

	if err := s.store.UpdateUserProfile(r.Context(), user.ID, name, email); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			writeDetail(w, http.StatusBadRequest, "Email already in use")
			return
		}
		log.FromContext(r.Context()).Error("profile update failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user.Name = name
	user.Email = email
	log.FromContext(r.Context()).Info("profile updated", log.FieldUserID, user.ID)
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxAvatarBytes)
	if err := r.ParseMultipartForm(s.maxAvatarBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "Avatar upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	defaultExt, ok := allowedAvatarTypes[contentType]
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Only JPEG, PNG, GIF, or WebP images are allowed")
		return
	}

	ext := defaultExt
	if i := strings.LastIndexByte(header.Filename, '.'); i >= 0 && i < len(header.Filename)-1 {
		ext = strings.ToLower(header.Filename[i+1:])
	}
	filename := strconv.FormatInt(user.ID, 10) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + "." + ext

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		log.FromContext(r.Context()).Error("upload dir creation failed", log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		log.FromContext(r.Context()).Error("avatar file creation failed", log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.FromContext(r.Context()).Error("avatar write failed", log.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Drop the previous avatar once the new one is on disk.
	if user.AvatarPath != "" {
		old := filepath.Join(s.uploadDir, filepath.Base(user.AvatarPath))
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			log.FromContext(r.Context()).Warn("old avatar removal failed", log.FieldError, err)
		}
	}

	if err := s.store.UpdateUserAvatar(r.Context(), user.ID, filename); err != nil {
		log.FromContext(r.Context()).Error("avatar update failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user.AvatarPath = filename
	log.FromContext(r.Context()).Info("avatar uploaded", log.FieldUserID, user.ID)
	writeJSON(w, http.StatusOK, toUserView(user))
}
