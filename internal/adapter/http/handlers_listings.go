package adapthttp

import (
	"errors"
	"net/http"
	"net/url"

	"stays/internal/app"
)

const (
	msgBooked         = "Booking successful!"
	msgAlreadyBooked  = "You have already booked this accommodation."
	msgBookingFailed  = "An error occurred during booking."
	msgNotEntitled    = "You cannot add review!"
	msgListingMissing = "Accommodation not found"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}

	filter, err := app.ParseListingFilter(
		r.PostFormValue("bedrooms"),
		r.PostFormValue("minNights"),
		r.PostFormValue("maxNights"),
	)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	listings, err := s.search.Search(r.Context(), filter)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "search_results.html", map[string]any{
		"Filter":   filter,
		"Listings": listings,
	})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeResult(w, http.StatusBadRequest, false, "invalid form")
		return
	}

	user := currentUser(r.Context())
	_, err := s.booking.Book(r.Context(), r.PostFormValue("airbnbId"), user.ID)
	var verr *app.ValidationError
	switch {
	case err == nil:
		writeResult(w, http.StatusOK, true, msgBooked)
	case errors.Is(err, app.ErrAlreadyBooked):
		writeResult(w, http.StatusConflict, false, msgAlreadyBooked)
	case errors.Is(err, app.ErrListingNotFound):
		writeResult(w, http.StatusNotFound, false, msgListingMissing)
	case errors.As(err, &verr):
		writeResult(w, http.StatusBadRequest, false, verr.Error())
	default:
		s.logger.ErrorContext(r.Context(), "booking failed", "error", err)
		s.reporter.CaptureException(r.Context(), err)
		writeResult(w, http.StatusInternalServerError, false, msgBookingFailed)
	}
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	s.renderListingPage(w, r, "reviews.html")
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	s.renderListingPage(w, r, "add_review.html")
}

func (s *Server) renderListingPage(w http.ResponseWriter, r *http.Request, page string) {
	listing, err := s.reviews.GetListing(r.Context(), r.PathValue("airbnbId"))
	if errors.Is(err, app.ErrListingNotFound) {
		writeText(w, http.StatusNotFound, msgListingMissing)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, page, map[string]any{"Listing": listing})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}

	listingID := r.PathValue("airbnbId")
	user := currentUser(r.Context())
	err := s.reviews.SubmitReview(r.Context(), listingID, user.ID,
		r.PostFormValue("reviewerName"), r.PostFormValue("comments"))
	var verr *app.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/reviews/"+url.PathEscape(listingID), http.StatusSeeOther)
	case errors.Is(err, app.ErrListingNotFound):
		writeText(w, http.StatusNotFound, msgListingMissing)
	case errors.Is(err, app.ErrNotEntitled):
		writeResult(w, http.StatusForbidden, false, msgNotEntitled)
	case errors.As(err, &verr):
		writeText(w, http.StatusBadRequest, verr.Error())
	default:
		s.serverError(w, r, err)
	}
}
