package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vasset/audio-service/internal/models"
	"vasset/audio-service/internal/utils"
)

type fakeSearcher struct {
	videos []models.VideoReference
	calls  int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) []models.VideoReference {
	f.calls++
	return f.videos
}

func (f *fakeSearcher) NormalizeLimit(maxResults int) int {
	if maxResults <= 0 {
		return 5
	}
	return maxResults
}

type fakeAcquirer struct {
	req     *models.ExtractionRequest
	payload *models.AudioPayload
	err     error
}

func (f *fakeAcquirer) Acquire(ctx context.Context, req *models.ExtractionRequest) (*models.AudioPayload, error) {
	f.req = req
	return f.payload, f.err
}

type fakeInfo struct {
	ref *models.VideoReference
	err error
}

func (f *fakeInfo) Lookup(ctx context.Context, rawURL string) (*models.VideoReference, error) {
	return f.ref, f.err
}

type memoryCache struct {
	data   map[string][]models.VideoReference
	getErr error
}

func (m *memoryCache) key(q string, n int) string {
	return q + "|" + string(rune('0'+n))
}

func (m *memoryCache) Get(ctx context.Context, q string, n int) ([]models.VideoReference, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[m.key(q, n)]
	if !ok {
		return nil, utils.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, q string, n int, v []models.VideoReference) error {
	m.data[m.key(q, n)] = v
	return nil
}

func TestSearchEmptyQuery(t *testing.T) {
	s := NewAudioService(&fakeSearcher{}, &fakeAcquirer{}, &fakeInfo{}, nil, zap.NewNop())
	_, err := s.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, utils.ErrEmptyQuery)
}

func TestSearchUsesCache(t *testing.T) {
	searcher := &fakeSearcher{videos: []models.VideoReference{{ID: "a"}, {ID: "b"}}}
	c := &memoryCache{data: map[string][]models.VideoReference{}}
	s := NewAudioService(searcher, &fakeAcquirer{}, &fakeInfo{}, c, zap.NewNop())

	first, err := s.Search(context.Background(), "lofi", 0)
	require.NoError(t, err)
	assert.Len(t, first.Videos, 2)

	second, err := s.Search(context.Background(), "lofi", 0)
	require.NoError(t, err)
	assert.Equal(t, first.Videos, second.Videos)
	assert.Equal(t, 1, searcher.calls)
}

func TestSearchCacheErrorIgnored(t *testing.T) {
	searcher := &fakeSearcher{}
	c := &memoryCache{data: map[string][]models.VideoReference{}, getErr: errors.New("connection refused")}
	s := NewAudioService(searcher, &fakeAcquirer{}, &fakeInfo{}, c, zap.NewNop())

	res, err := s.Search(context.Background(), "nothing", 3)
	require.NoError(t, err)
	assert.NotNil(t, res.Videos)
	assert.Empty(t, res.Videos)
	assert.Equal(t, 1, searcher.calls)
}

func TestDownloadBuildsRequest(t *testing.T) {
	acquirer := &fakeAcquirer{payload: &models.AudioPayload{FileName: "song", Size: 3}}
	s := NewAudioService(&fakeSearcher{}, acquirer, &fakeInfo{}, nil, zap.NewNop())

	payload, err := s.Download(context.Background(), "https://youtu.be/dQw4w9WgXcQ?utm_source=x")
	require.NoError(t, err)
	assert.Equal(t, "song", payload.FileName)
	require.NotNil(t, acquirer.req)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", acquirer.req.URL)
	assert.Equal(t, "dQw4w9WgXcQ", acquirer.req.Video.ID)
}

func TestDownloadRejectsInvalidURL(t *testing.T) {
	acquirer := &fakeAcquirer{}
	s := NewAudioService(&fakeSearcher{}, acquirer, &fakeInfo{}, nil, zap.NewNop())

	_, err := s.Download(context.Background(), "not a url")
	assert.ErrorIs(t, err, utils.ErrInvalidURL)
	assert.Nil(t, acquirer.req)

	_, err = s.Download(context.Background(), "https://vimeo.com/1")
	assert.ErrorIs(t, err, utils.ErrUnsupportedPlatform)
}

func TestInfoDelegates(t *testing.T) {
	s := NewAudioService(&fakeSearcher{}, &fakeAcquirer{}, &fakeInfo{ref: &models.VideoReference{ID: "x"}}, nil, zap.NewNop())
	ref, err := s.Info(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "x", ref.ID)
}
