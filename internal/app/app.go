package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andrebq/reviewbox/auth"
	authapi "github.com/andrebq/reviewbox/auth/api"
	"github.com/andrebq/reviewbox/internal/logutil"
	"github.com/andrebq/reviewbox/internal/metrics"
	"github.com/andrebq/reviewbox/review"
	reviewapi "github.com/andrebq/reviewbox/review/api"
	"github.com/andrebq/reviewbox/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type (
	Config struct {
		Secret         auth.Secret
		TokenTTL       time.Duration
		Issuer         string
		Hasher         auth.HasherParams
		RatingCacheTTL time.Duration
		Auth           authapi.Options
	}

	// App holds every long lived component of a running server.
	App struct {
		Auth    *auth.Service
		Reviews *review.Service
		Metrics *metrics.Metrics

		handler http.Handler
		ratings *review.RatingCache
	}
)

func New(ctx context.Context, db *store.DB, cfg Config) (*App, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("app: a signing secret is required")
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var opts []auth.TokenOption
	if cfg.Issuer != "" {
		opts = append(opts, auth.WithIssuer(cfg.Issuer))
	}
	tokens := auth.NewTokens(cfg.Secret, cfg.TokenTTL, opts...)
	if cfg.Hasher == (auth.HasherParams{}) {
		cfg.Hasher = auth.DefaultHasherParams()
	}
	authSvc := auth.NewService(db.Users(), auth.NewHasher(cfg.Hasher, nil), tokens)
	realm := authapi.NewRealm(tokens, m)

	ratings, err := review.NewRatingCache(ctx, cfg.RatingCacheTTL)
	if err != nil {
		return nil, err
	}
	reviewSvc := review.NewService(db.Reviews(), ratings)

	authHandler := authapi.AsHandler(authSvc, realm, m, cfg.Auth)
	mux := http.NewServeMux()
	mux.Handle("/auth", authHandler)
	mux.Handle("/auth/", authHandler)
	mux.Handle("/review/", reviewapi.AsHandler(reviewSvc, realm, m))
	mux.Handle("/metrics", m.Handler())

	return &App{
		Auth:    authSvc,
		Reviews: reviewSvc,
		Metrics: m,
		handler: logutil.Middleware(logutil.GetOrDefault(ctx))(mux),
		ratings: ratings,
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Close() error {
	return a.ratings.Close()
}
