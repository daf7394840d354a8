package backend

import (
	"context"
	"errors"
	"log"
	"net/http"

	"quiz-runner/internal/auth"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/api"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuizStore is the content source the backend serves and scores against.
type QuizStore interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// Server is a small reference implementation of the quiz REST API, used for
// local development and end-to-end tests of the runner.
type Server struct {
	quizzes QuizStore
	secret  string
	newID   func() string
}

// NewServer builds a backend over quizzes. An empty secret disables auth on submit.
func NewServer(quizzes QuizStore, secret string) *Server {
	return &Server{quizzes: quizzes, secret: secret, newID: uuid.NewString}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	quizzes := r.Group("/quizzes")
	{
		quizzes.GET("", s.listQuizzes)
		quizzes.GET("/:id", s.getQuiz)
		quizzes.GET("/:id/questions", s.getQuestions)
		quizzes.POST("/:id/submit", s.requireAuth(), s.submit)
	}
	return r
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.secret == "" {
			c.Next()
			return
		}
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Detail: "authorization required"})
			return
		}
		claims, err := auth.Verify(s.secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Detail: "invalid or expired token"})
			return
		}
		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

func (s *Server) listQuizzes(c *gin.Context) {
	quizzes, err := s.quizzes.ListQuizzes(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]api.QuizDTO, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, api.QuizToDTO(quiz))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getQuiz(c *gin.Context) {
	quiz, err := s.quizzes.LoadQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.QuizToDTO(quiz))
}

// getQuestions withholds correctness flags and explanations.
func (s *Server) getQuestions(c *gin.Context) {
	quiz, err := s.activeQuiz(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]api.QuestionDTO, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		out = append(out, api.QuestionToDTO(q, false))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) submit(c *gin.Context) {
	var req api.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: err.Error()})
		return
	}
	quiz, err := s.activeQuiz(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	score, err := scoreSubmission(quiz, domain.Answers(req.Answers))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: err.Error()})
		return
	}

	resp := api.SubmitResponse{
		AttemptID:      api.ID(s.newID()),
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		QuizTitle:      quiz.Title,
		Questions:      make([]api.QuestionDTO, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, api.QuestionToDTO(q, true))
	}
	log.Printf("backend: quiz %s scored %d/%d for %q", quiz.ID, score, resp.TotalQuestions, c.GetString("user_id"))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) activeQuiz(c *gin.Context) (domain.Quiz, error) {
	quiz, err := s.quizzes.LoadQuiz(c.Request.Context(), c.Param("id"))
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Inactive {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrQuizNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Detail: "quiz not found"})
		return
	}
	log.Printf("backend: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Detail: "internal error"})
}
