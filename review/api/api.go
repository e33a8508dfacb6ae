package api

import (
	"context"
	"errors"
	"net/http"

	authapi "github.com/andrebq/reviewbox/auth/api"
	"github.com/andrebq/reviewbox/internal/logutil"
	"github.com/andrebq/reviewbox/internal/metrics"
	"github.com/andrebq/reviewbox/internal/respond"
	"github.com/andrebq/reviewbox/review"
	"github.com/julienschmidt/httprouter"
)

// AsHandler exposes svc under /review, writes require a valid token.
func AsHandler(svc *review.Service, realm *authapi.Realm, m *metrics.Metrics) http.Handler {
	router := httprouter.New()
	router.Handler("POST", "/review/create", realm.Protect(createReview(svc, m)))
	router.Handler("DELETE", "/review/:id", realm.Protect(deleteReview(svc, m)))
	router.HandlerFunc("GET", "/review/byProduct/:productId", byProduct(svc))
	router.HandlerFunc("GET", "/review/rating/:productId", rating(svc))
	return router
}

func createReview(svc *review.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in review.CreateReview
		if err := respond.Decode(w, r, &in); err != nil {
			m.ReviewOp("create", "bad_request")
			respond.Error(w, http.StatusBadRequest, "invalid review payload")
			return
		}
		rv, err := svc.Create(r.Context(), in)
		if err != nil {
			m.ReviewOp("create", "error")
			writeError(r.Context(), w, err)
			return
		}
		m.ReviewOp("create", "ok")
		respond.JSON(w, http.StatusCreated, rv)
	}
}

func deleteReview(svc *review.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		rv, err := svc.Delete(r.Context(), id)
		if err != nil {
			m.ReviewOp("delete", "error")
			writeError(r.Context(), w, err)
			return
		}
		m.ReviewOp("delete", "ok")
		respond.JSON(w, http.StatusOK, rv)
	}
}

func byProduct(svc *review.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := httprouter.ParamsFromContext(r.Context()).ByName("productId")
		list, err := svc.ByProduct(r.Context(), productID)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
	}
}

func rating(svc *review.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := httprouter.ParamsFromContext(r.Context()).ByName("productId")
		rt, err := svc.Rating(r.Context(), productID)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		respond.JSON(w, http.StatusOK, rt)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var invalid review.InvalidReview
	switch {
	case errors.As(err, &invalid):
		respond.Error(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, review.NotFound{}):
		respond.Error(w, http.StatusNotFound, "review not found")
	default:
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Msg("Unexpected error while handling review request")
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
