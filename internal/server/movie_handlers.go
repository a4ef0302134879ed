package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetPopularMovies handles GET /api/movies/popular
// @Summary Popular movies
// @Description The 20 highest rated movies
// @Tags movies
// @Produce json
// @Success 200 {array} models.Movie
// @Router /movies/popular [get]
func (s *Server) GetPopularMovies(c *fiber.Ctx) error {
	movies, err := s.catalogSvc().Popular(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(movies)
}

// SearchMovies handles GET /api/movies/search?query=...
// @Summary Search movies
// @Description Case-insensitive title substring match; a blank query returns []
// @Tags movies
// @Produce json
// @Param query query string false "Title fragment"
// @Success 200 {array} models.Movie
// @Router /movies/search [get]
func (s *Server) SearchMovies(c *fiber.Ctx) error {
	movies, err := s.catalogSvc().Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(movies)
}

// GetMovie handles GET /api/movies/:id
// @Summary Get movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} models.Movie
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /movies/{id} [get]
func (s *Server) GetMovie(c *fiber.Ctx) error {
	id, err := parseMovieID(c, "id")
	if err != nil {
		return nil
	}

	movie, err := s.catalogSvc().Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(movie)
}
