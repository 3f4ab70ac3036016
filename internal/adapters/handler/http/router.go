package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	roundHandler *VotingRoundHandler,
	voteHandler *VoteHandler,
	nominationHandler *NominationHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})

		r.Route("/votingRounds", func(r chi.Router) {
			r.Post("/", roundHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", roundHandler.Get)
				r.Delete("/", roundHandler.Delete)
				r.Post("/link", roundHandler.Link)
				r.Post("/link/refresh", roundHandler.RefreshLink)
				r.Post("/votes", voteHandler.CastVote)
				r.Post("/votes/reveal", voteHandler.RevealVotes)
				r.Post("/result/reveal", voteHandler.RevealResult)
				r.Post("/nominations", nominationHandler.Nominate)
				r.Patch("/nominations", nominationHandler.SetStatuses)
			})
		})
	})

	return r
}
