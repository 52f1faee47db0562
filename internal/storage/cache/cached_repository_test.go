package cache

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"contentsearch/internal/domain"
	"contentsearch/internal/service/mocks"
)

type CachedRepositoryTestSuite struct {
	suite.Suite

	ctrl  *gomock.Controller
	redis *miniredis.Miniredis
	cache *Cache
	inner *mocks.MockContentRepository
	repo  *CachedContentRepository
}

func (s *CachedRepositoryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.redis = mr

	s.cache = NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	s.inner = mocks.NewMockContentRepository(s.ctrl)
	s.repo = NewCachedContentRepository(
		s.inner, s.cache,
		time.Minute, time.Minute,
		slog.New(slog.DiscardHandler),
	)
}

func (s *CachedRepositoryTestSuite) TearDownTest() {
	s.cache.Close()
	s.redis.Close()
	s.ctrl.Finish()
}

func TestCachedRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(CachedRepositoryTestSuite))
}

func (s *CachedRepositoryTestSuite) testContent(externalID string) domain.Content {
	return domain.Content{
		ID:             domain.ContentID("provider1-json", externalID),
		ExternalID:     externalID,
		SourceProvider: "provider1-json",
		ContentType:    domain.TypeVideo,
		Title:          "Cached " + externalID,
		FinalScore:     12.5,
		PublishedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func (s *CachedRepositoryTestSuite) TestSearch_SecondCallServedFromCache() {
	ctx := context.Background()
	filter := domain.SearchFilter{Keyword: "Go", SortBy: domain.SortByPopularity, Page: 1, PageSize: 10}
	content := s.testContent("vid-1")

	s.inner.EXPECT().
		Search(gomock.Any(), filter).
		Return([]domain.Content{content}, 1, nil).
		Times(1)

	for i := 0; i < 2; i++ {
		items, total, err := s.repo.Search(ctx, filter)
		s.NoError(err)
		s.Equal(1, total)
		s.Require().Len(items, 1)
		s.Equal(content.ID, items[0].ID)
	}
}

func (s *CachedRepositoryTestSuite) TestSearch_KeyIsCaseInsensitiveOnKeyword() {
	ctx := context.Background()
	content := s.testContent("vid-1")

	s.inner.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return([]domain.Content{content}, 1, nil).
		Times(1)

	_, _, err := s.repo.Search(ctx, domain.SearchFilter{Keyword: "Go", SortBy: domain.SortByPopularity, Page: 1, PageSize: 10})
	s.NoError(err)

	_, total, err := s.repo.Search(ctx, domain.SearchFilter{Keyword: "gO", SortBy: domain.SortByPopularity, Page: 1, PageSize: 10})
	s.NoError(err)
	s.Equal(1, total)
}

func (s *CachedRepositoryTestSuite) TestSearch_DistinctFiltersGetDistinctEntries() {
	ctx := context.Background()

	videoType := domain.TypeVideo
	first := domain.SearchFilter{Keyword: "go", SortBy: domain.SortByPopularity, Page: 1, PageSize: 10}
	second := domain.SearchFilter{Keyword: "go", Type: &videoType, SortBy: domain.SortByPopularity, Page: 1, PageSize: 10}

	s.inner.EXPECT().Search(gomock.Any(), first).Return([]domain.Content{}, 0, nil)
	s.inner.EXPECT().Search(gomock.Any(), second).Return([]domain.Content{s.testContent("vid-1")}, 1, nil)

	_, total, err := s.repo.Search(ctx, first)
	s.NoError(err)
	s.Equal(0, total)

	_, total, err = s.repo.Search(ctx, second)
	s.NoError(err)
	s.Equal(1, total)
}

func (s *CachedRepositoryTestSuite) TestSearch_CacheDownFallsThrough() {
	ctx := context.Background()
	filter := domain.SearchFilter{Keyword: "go", SortBy: domain.SortByPopularity, Page: 1, PageSize: 10}

	s.redis.SetError("connection refused")
	defer s.redis.SetError("")

	s.inner.EXPECT().
		Search(gomock.Any(), filter).
		Return([]domain.Content{s.testContent("vid-1")}, 1, nil)

	items, total, err := s.repo.Search(ctx, filter)
	s.NoError(err)
	s.Equal(1, total)
	s.Len(items, 1)
}

func (s *CachedRepositoryTestSuite) TestGetByID_CachesHitButNotMiss() {
	ctx := context.Background()
	content := s.testContent("vid-1")
	missing := domain.ContentID("provider1-json", "missing")

	s.inner.EXPECT().GetByID(gomock.Any(), content.ID).Return(&content, nil).Times(1)
	s.inner.EXPECT().GetByID(gomock.Any(), missing).Return(nil, nil).Times(2)

	for i := 0; i < 2; i++ {
		got, err := s.repo.GetByID(ctx, content.ID)
		s.NoError(err)
		s.Require().NotNil(got)
		s.Equal(content.Title, got.Title)
	}

	// A miss is asked of the store every time.
	for i := 0; i < 2; i++ {
		got, err := s.repo.GetByID(ctx, missing)
		s.NoError(err)
		s.Nil(got)
	}
}

func (s *CachedRepositoryTestSuite) TestUpsertMany_PassesThroughWithoutInvalidating() {
	ctx := context.Background()
	filter := domain.SearchFilter{Keyword: "go", SortBy: domain.SortByPopularity, Page: 1, PageSize: 10}
	content := s.testContent("vid-1")

	s.inner.EXPECT().Search(gomock.Any(), filter).Return([]domain.Content{content}, 1, nil).Times(1)
	s.inner.EXPECT().UpsertMany(gomock.Any(), gomock.Any()).Return(nil)

	_, _, err := s.repo.Search(ctx, filter)
	s.NoError(err)

	s.NoError(s.repo.UpsertMany(ctx, []domain.Content{content}))

	// Invalidation belongs to the event consumer; the cached page is
	// still served.
	_, total, err := s.repo.Search(ctx, filter)
	s.NoError(err)
	s.Equal(1, total)
}

func (s *CachedRepositoryTestSuite) TestUpsertMany_PropagatesStoreError() {
	s.inner.EXPECT().UpsertMany(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

	err := s.repo.UpsertMany(context.Background(), []domain.Content{s.testContent("vid-1")})
	s.Error(err)
}
