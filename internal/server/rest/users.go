package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/server/avatar"
)

// multipartOverhead is the room left for multipart headers above the image
// size limit.
const multipartOverhead = 64 << 10

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) error {
	user, err := s.users.Me(r.Context(), currentUser(r))
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, user)
	return nil
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	if !currentUser(r).IsAdmin() {
		return common.ErrForbidden
	}

	r.Body = http.MaxBytesReader(w, r.Body, avatar.MaxSize+multipartOverhead)
	if err := r.ParseMultipartForm(avatar.MaxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errUnprocessable(fmt.Sprintf("avatar must be at most %d bytes", avatar.MaxSize), err)
		}
		return errUnprocessable("invalid multipart body", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return errUnprocessable("multipart field file is required", err)
	}
	defer file.Close()

	user, err := s.users.UpdateAvatar(r.Context(), currentUser(r), avatar.Image{
		Body:        file,
		Size:        header.Size,
		ContentType: header.Header.Get(headerContentType),
		Filename:    header.Filename,
	})
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, user)
	return nil
}
