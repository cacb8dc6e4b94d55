package adapthttp

import (
	"errors"
	"net/http"

	"stays/internal/app"
	"stays/internal/domain"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	reservations, err := s.booking.ListReservations(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"User":         user,
		"Reservations": reservations,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "profile.html", map[string]any{
		"User": currentUser(r.Context()),
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}

	user := currentUser(r.Context())
	_, err := s.auth.UpdateProfile(r.Context(), user.ID, domain.ProfileUpdate{
		FirstName:   r.PostFormValue("firstName"),
		LastName:    r.PostFormValue("lastName"),
		PhoneNumber: r.PostFormValue("phoneNumber"),
	})
	var verr *app.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	case errors.As(err, &verr):
		writeText(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, app.ErrUserNotFound):
		clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		s.serverError(w, r, err)
	}
}
