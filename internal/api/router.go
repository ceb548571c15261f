package api

import (
	"net/http"
	"time"

	"coursehub/internal/api/handler"
	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	contentService *service.ContentService,
	testService *service.TestService,
	adminService *service.AdminService,
	uploadService *service.UploadService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Token verification only; it never rejects by itself. Rejection is
	// the Authenticator's job on the routes that need a user. Tokens are
	// accepted from the Authorization header or the session cookie.
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader, security.TokenFromCookie))

	authn := middleware.Authenticator(authService)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(apiRouter chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		apiRouter.Route("/auth", func(ar chi.Router) {
			authHandler.RegisterRoutes(ar, authn)
		})

		courseHandler := handler.NewCourseHandler(contentService, testService)
		apiRouter.Route("/courses", func(cr chi.Router) {
			courseHandler.RegisterRoutes(cr, authn, middleware.AdminOnly)
		})

		lessonHandler := handler.NewLessonHandler(contentService)
		apiRouter.Route("/lessons", func(lr chi.Router) {
			lessonHandler.RegisterRoutes(lr, authn, middleware.AdminOnly)
		})

		testHandler := handler.NewTestHandler(testService)
		apiRouter.Route("/tests", func(tr chi.Router) {
			testHandler.RegisterRoutes(tr, authn, middleware.AdminOnly)
		})

		questionHandler := handler.NewQuestionHandler(testService)
		apiRouter.Route("/test-questions", func(qr chi.Router) {
			questionHandler.RegisterRoutes(qr, authn, middleware.AdminOnly)
		})

		resultHandler := handler.NewResultHandler(testService)
		apiRouter.Route("/test-results", func(rr chi.Router) {
			rr.Use(authn)
			resultHandler.RegisterRoutes(rr)
		})

		uploadHandler := handler.NewUploadHandler(uploadService)
		apiRouter.Route("/upload", func(ur chi.Router) {
			ur.Use(authn, middleware.AdminOnly)
			uploadHandler.RegisterRoutes(ur)
		})

		statusHandler := handler.NewStatusHandler(adminService)
		statusHandler.RegisterRoutes(apiRouter, authn, middleware.AdminOnly)
	})

	return r
}
