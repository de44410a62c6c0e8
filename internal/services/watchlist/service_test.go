package watchlist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/watchlist/internal/dependencies/mocks"
	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/services/auth"
	"github.com/mcoot/watchlist/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	movieIDs *mocks.MockIDGenerator
	auth     *auth.Service
	service  *Service
	ctx      context.Context

	alice *auth.Principal
	bob   *auth.Principal
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.movieIDs = mocks.NewMockIDGenerator()
	s.ctx = context.Background()

	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := auth.DefaultConfig()
	cfg.Secret = []byte("test-secret")
	var err error
	s.auth, err = auth.New(s.storage, clock, mocks.NewMockIDGenerator(), cfg)
	s.Require().NoError(err)

	s.service = New(s.storage, s.movieIDs)
	s.alice = s.principal("alice")
	s.bob = s.principal("bob")
}

func (s *ServiceSuite) principal(username string) *auth.Principal {
	_, err := s.auth.Register(s.ctx, username, "password123")
	s.Require().NoError(err)
	token, err := s.auth.Login(s.ctx, username, "password123")
	s.Require().NoError(err)
	p, err := s.auth.Authenticate(s.ctx, token)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) create(p *auth.Principal, title string, watched bool) *model.Movie {
	m, err := s.service.Create(s.ctx, p, NewMovie{Title: title, Watched: watched})
	s.Require().NoError(err)
	return m
}

func ptr[T any](v T) *T {
	return &v
}

// Create tests

func (s *ServiceSuite) TestCreateAppliesDefaults() {
	s.movieIDs.Queue("m1")

	m, err := s.service.Create(s.ctx, s.alice, NewMovie{Title: "Dune"})
	s.Require().NoError(err)

	s.Equal(model.Movie{
		ID:       "m1",
		Title:    "Dune",
		Language: model.DefaultLanguage,
		Overview: "",
		Watched:  false,
	}, *m)
}

func (s *ServiceSuite) TestCreateKeepsProvidedFields() {
	m, err := s.service.Create(s.ctx, s.alice, NewMovie{
		Title:    "Amélie",
		Language: "French",
		Overview: "A shy waitress",
		Watched:  true,
	})
	s.Require().NoError(err)

	s.Equal("French", m.Language)
	s.Equal("A shy waitress", m.Overview)
	s.True(m.Watched)
}

func (s *ServiceSuite) TestCreateRequiresTitle() {
	_, err := s.service.Create(s.ctx, s.alice, NewMovie{Language: "English"})
	s.ErrorIs(err, model.ErrMissingTitle)

	movies, _ := s.service.List(s.ctx, s.alice, model.StatusAll)
	s.Empty(movies)
}

func (s *ServiceSuite) TestCreateThenGetRoundTrip() {
	created, _ := s.service.Create(s.ctx, s.alice, NewMovie{Title: "Dune", Language: "English"})

	got, err := s.service.Get(s.ctx, s.alice, created.ID)
	s.Require().NoError(err)
	s.Equal(*created, *got)
}

func (s *ServiceSuite) TestCreateAssignsDistinctIDs() {
	a := s.create(s.alice, "Dune", false)
	b := s.create(s.alice, "Dune", false)
	s.NotEqual(a.ID, b.ID)
}

// List tests

func (s *ServiceSuite) TestListFiltersAndKeepsOrder() {
	s.movieIDs.Queue("m1", "m2", "m3", "m4")
	s.create(s.alice, "A", true)
	s.create(s.alice, "B", false)
	s.create(s.alice, "C", true)
	s.create(s.alice, "D", false)

	all, err := s.service.List(s.ctx, s.alice, model.StatusAll)
	s.Require().NoError(err)
	s.Equal([]string{"A", "B", "C", "D"}, titles(all))

	watched, err := s.service.List(s.ctx, s.alice, model.StatusWatched)
	s.Require().NoError(err)
	s.Equal([]string{"A", "C"}, titles(watched))

	unwatched, err := s.service.List(s.ctx, s.alice, model.StatusUnwatched)
	s.Require().NoError(err)
	s.Equal([]string{"B", "D"}, titles(unwatched))
}

func (s *ServiceSuite) TestListInvalidStatus() {
	_, err := s.service.List(s.ctx, s.alice, model.WatchStatus("bogus"))
	s.ErrorIs(err, model.ErrInvalidStatus)
}

func (s *ServiceSuite) TestListEmpty() {
	movies, err := s.service.List(s.ctx, s.alice, model.StatusAll)
	s.Require().NoError(err)
	s.NotNil(movies)
	s.Empty(movies)
}

// Ownership tests

func (s *ServiceSuite) TestOtherUsersMovieIsNotFound() {
	m := s.create(s.alice, "Dune", false)

	_, err := s.service.Get(s.ctx, s.bob, m.ID)
	s.ErrorIs(err, model.ErrMovieNotFound)

	_, err = s.service.Update(s.ctx, s.bob, m.ID, MoviePatch{Watched: ptr(true)})
	s.ErrorIs(err, model.ErrMovieNotFound)

	_, err = s.service.Delete(s.ctx, s.bob, m.ID)
	s.ErrorIs(err, model.ErrMovieNotFound)

	// Alice's movie is untouched
	got, err := s.service.Get(s.ctx, s.alice, m.ID)
	s.Require().NoError(err)
	s.False(got.Watched)
}

func (s *ServiceSuite) TestListIsPerUser() {
	s.create(s.alice, "Dune", false)

	movies, err := s.service.List(s.ctx, s.bob, model.StatusAll)
	s.Require().NoError(err)
	s.Empty(movies)
}

func (s *ServiceSuite) TestUnknownMovie() {
	_, err := s.service.Get(s.ctx, s.alice, "nope")
	s.ErrorIs(err, model.ErrMovieNotFound)
}

func (s *ServiceSuite) TestDeletedOwner() {
	s.Require().NoError(s.auth.DeleteAccount(s.ctx, s.alice))

	_, err := s.service.Create(s.ctx, s.alice, NewMovie{Title: "Dune"})
	s.ErrorIs(err, auth.ErrUserDeleted)

	_, err = s.service.List(s.ctx, s.alice, model.StatusAll)
	s.ErrorIs(err, auth.ErrUserDeleted)
}

// Update tests

func (s *ServiceSuite) TestPartialUpdateLeavesOtherFields() {
	created, _ := s.service.Create(s.ctx, s.alice, NewMovie{
		Title:    "Dune",
		Language: "English",
		Overview: "Spice",
	})

	updated, err := s.service.Update(s.ctx, s.alice, created.ID, MoviePatch{Watched: ptr(true)})
	s.Require().NoError(err)

	s.Equal(model.Movie{
		ID:       created.ID,
		Title:    "Dune",
		Language: "English",
		Overview: "Spice",
		Watched:  true,
	}, *updated)

	got, _ := s.service.Get(s.ctx, s.alice, created.ID)
	s.Equal(*updated, *got)
}

func (s *ServiceSuite) TestUpdateAllFields() {
	created := s.create(s.alice, "Dune", false)

	updated, err := s.service.Update(s.ctx, s.alice, created.ID, MoviePatch{
		Title:    ptr("Dune: Part Two"),
		Language: ptr("English"),
		Overview: ptr(""),
		Watched:  ptr(true),
	})
	s.Require().NoError(err)
	s.Equal("Dune: Part Two", updated.Title)
	s.Equal("English", updated.Language)
	s.True(updated.Watched)
}

func (s *ServiceSuite) TestUpdateEmptyTitleRejected() {
	created := s.create(s.alice, "Dune", false)

	_, err := s.service.Update(s.ctx, s.alice, created.ID, MoviePatch{Title: ptr(""), Watched: ptr(true)})
	s.ErrorIs(err, model.ErrMissingTitle)

	got, _ := s.service.Get(s.ctx, s.alice, created.ID)
	s.Equal("Dune", got.Title)
	s.False(got.Watched)
}

func (s *ServiceSuite) TestUpdateUnknownMovieBeforeValidation() {
	_, err := s.service.Update(s.ctx, s.alice, "nope", MoviePatch{Title: ptr("")})
	s.ErrorIs(err, model.ErrMovieNotFound)
}

// Delete tests

func (s *ServiceSuite) TestDeleteReturnsRemovedMovie() {
	s.movieIDs.Queue("m1", "m2", "m3")
	s.create(s.alice, "A", false)
	s.create(s.alice, "B", false)
	s.create(s.alice, "C", false)

	removed, err := s.service.Delete(s.ctx, s.alice, "m2")
	s.Require().NoError(err)
	s.Equal("B", removed.Title)

	movies, _ := s.service.List(s.ctx, s.alice, model.StatusAll)
	s.Equal([]string{"A", "C"}, titles(movies))

	_, err = s.service.Delete(s.ctx, s.alice, "m2")
	s.ErrorIs(err, model.ErrMovieNotFound)
}

// Concurrency

func (s *ServiceSuite) TestConcurrentCreatesAllLand() {
	const n = 40
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Create(s.ctx, s.alice, NewMovie{Title: fmt.Sprintf("Movie %d", i)})
			s.NoError(err)
		}()
	}
	wg.Wait()

	movies, err := s.service.List(s.ctx, s.alice, model.StatusAll)
	s.Require().NoError(err)
	s.Len(movies, n)
}

func titles(movies []model.Movie) []string {
	result := make([]string, 0, len(movies))
	for _, m := range movies {
		result = append(result, m.Title)
	}
	return result
}
