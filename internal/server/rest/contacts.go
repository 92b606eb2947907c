package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	skip, err := intQuery(r, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := intQuery(r, "limit", models.DefaultContactLimit)
	if err != nil {
		return err
	}
	if limit < 1 {
		return errUnprocessable(fmt.Sprintf("limit must be 1..%d", models.MaxContactLimit), nil)
	}

	contacts, err := s.contacts.List(r.Context(), currentUser(r), models.ContactFilter{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		Email:     q.Get("email"),
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	respondContacts(w, contacts)
	return nil
}

func (s *Server) handleBirthdays(w http.ResponseWriter, r *http.Request) error {
	days, err := intQuery(r, "days", services.DefaultBirthdayDays)
	if err != nil {
		return err
	}

	contacts, err := s.contacts.UpcomingBirthdays(r.Context(), currentUser(r), days)
	if err != nil {
		return err
	}

	respondContacts(w, contacts)
	return nil
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}

	c, err := s.contacts.Get(r.Context(), currentUser(r), id)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, c)
	return nil
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) error {
	var req models.ContactFields
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	c, err := s.contacts.Create(r.Context(), currentUser(r), req)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusCreated, c)
	return nil
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}

	var patch models.ContactPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}

	c, err := s.contacts.Update(r.Context(), currentUser(r), id, patch)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, c)
	return nil
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) error {
	id, err := contactID(r)
	if err != nil {
		return err
	}

	c, err := s.contacts.Remove(r.Context(), currentUser(r), id)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, c)
	return nil
}

func respondContacts(w http.ResponseWriter, contacts []*models.Contact) {
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	respondJSON(w, http.StatusOK, contacts)
}

func contactID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, paramID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errUnprocessable(fmt.Sprintf("invalid contact id %q", raw), err)
	}
	return id, nil
}

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errUnprocessable(fmt.Sprintf("query parameter %s must be an integer", name), err)
	}
	return v, nil
}
