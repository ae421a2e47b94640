package fanarttv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/metascrape/internal/scraper"
	"github.com/slipstream/metascrape/internal/transport"
)

const movieJSON = `{
	"name": "The Matrix",
	"tmdb_id": "603",
	"imdb_id": "tt0133093",
	"movieposter": [
		{"id": "1", "url": "https://assets.fanart.tv/fanart/movies/603/movieposter/a.jpg", "lang": "en", "likes": "3"},
		{"id": "2", "url": "https://assets.fanart.tv/fanart/movies/603/movieposter/b.jpg", "lang": "de", "likes": "1"},
		{"id": "3", "url": "https://assets.fanart.tv/fanart/movies/603/movieposter/c.jpg", "lang": "fr", "likes": "9"},
		{"id": "4", "url": "https://assets.fanart.tv/fanart/movies/603/movieposter/d.jpg", "lang": "en", "likes": "7"}
	],
	"moviebackground": [
		{"id": "5", "url": "https://assets.fanart.tv/fanart/movies/603/moviebackground/e.jpg", "lang": "00", "likes": "2"},
		{"id": "6", "url": "", "lang": "en", "likes": "2"}
	],
	"hdmovielogo": [{"id": "7", "url": "https://assets.fanart.tv/fanart/movies/603/hdmovielogo/f.png", "lang": "en", "likes": "1"}],
	"movielogo": [{"id": "8", "url": "https://assets.fanart.tv/fanart/movies/603/movielogo/g.png", "lang": "en", "likes": "0"}],
	"moviedisc": [
		{"id": "9", "url": "https://assets.fanart.tv/fanart/movies/603/moviedisc/dvd.png", "lang": "en", "likes": "5", "disc": "1", "disc_type": "dvd"},
		{"id": "10", "url": "https://assets.fanart.tv/fanart/movies/603/moviedisc/bluray.png", "lang": "en", "likes": "1", "disc": "1", "disc_type": "bluray"}
	]
}`

const albumJSON = `{
	"name": "Radiohead",
	"mbid_id": "a74b1b7f-71a5-4011-9441-d0b5e4122711",
	"albums": {
		"b1392450-e666-3926-a536-22c65f834433": {
			"albumcover": [{"id": "1", "url": "https://assets.fanart.tv/fanart/music/a/albumcover/okc.jpg", "likes": "4"}],
			"cdart": [{"id": "2", "url": "https://assets.fanart.tv/fanart/music/a/cdart/okc.png", "likes": "2", "disc": "1", "size": "1000"}]
		}
	}
}`

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRequestURL(t *testing.T) {
	p := New(Config{APIKey: "k", ClientKey: "c"}, zerolog.Nop())

	tests := []struct {
		media scraper.MediaType
		id    string
		want  string
	}{
		{scraper.MediaMovie, "603", DefaultBaseURL + "/movies/603?api_key=k&client_key=c"},
		{scraper.MediaArtist, "mbid-1", DefaultBaseURL + "/music/mbid-1?api_key=k&client_key=c"},
		{scraper.MediaAlbum, "mbid-2", DefaultBaseURL + "/music/albums/mbid-2?api_key=k&client_key=c"},
	}
	for _, tt := range tests {
		t.Run(string(tt.media), func(t *testing.T) {
			got, err := p.RequestURL(scraper.DetailRequest{Kind: scraper.KindImages, Media: tt.media, ID: tt.id})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := p.RequestURL(scraper.DetailRequest{Kind: scraper.KindImages, Media: scraper.MediaShow, ID: "1"})
	assert.ErrorIs(t, err, scraper.ErrUnsupportedMedia)

	_, err = New(Config{}, zerolog.Nop()).RequestURL(scraper.DetailRequest{Kind: scraper.KindImages, Media: scraper.MediaMovie, ID: "1"})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestLoad_MovieArtwork(t *testing.T) {
	server := newTestServer(t, map[string]string{"/movies/603": movieJSON})
	p := New(Config{APIKey: "test-key", BaseURL: server.URL, PreferredDiscType: "bluray"}, zerolog.Nop())
	store := scraper.NewStore()
	o := scraper.NewOrchestrator(transport.New(transport.Config{}, zerolog.Nop()), store, zerolog.Nop())

	movie := &scraper.Movie{}
	report, err := o.Load(context.Background(), scraper.LoadRequest{
		Handle: store.Add(movie), Provider: p, ID: "603", Fields: scraper.AllFields,
		Locale: scraper.MustParseLocale("de-DE"),
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Equal(t, []scraper.RequestKind{scraper.KindImages}, report.Kinds)

	require.Len(t, movie.Posters, 4)
	assert.Equal(t, "de", movie.Posters[0].Language)
	assert.Contains(t, movie.Posters[1].OriginalURL, "d.jpg")
	assert.Contains(t, movie.Posters[2].OriginalURL, "a.jpg")
	assert.Equal(t, "fr", movie.Posters[3].Language)
	assert.Equal(t, "https://assets.fanart.tv/preview/movies/603/movieposter/b.jpg", movie.Posters[0].ThumbURL)

	require.Len(t, movie.Backdrops, 1)
	assert.Empty(t, movie.Backdrops[0].Language)
	assert.Len(t, movie.Logos, 2)
	assert.Empty(t, movie.Banners)

	require.Len(t, movie.CdArts, 2)
	assert.Contains(t, movie.CdArts[0].OriginalURL, "bluray.png")

	assert.Equal(t, "603", movie.ID(scraper.IDTmdb))
	assert.Empty(t, movie.Title)
}

func TestLoad_AlbumArtwork(t *testing.T) {
	const mbid = "b1392450-e666-3926-a536-22c65f834433"
	server := newTestServer(t, map[string]string{"/music/albums/" + mbid: albumJSON})
	p := New(Config{APIKey: "test-key", BaseURL: server.URL}, zerolog.Nop())
	store := scraper.NewStore()
	o := scraper.NewOrchestrator(transport.New(transport.Config{}, zerolog.Nop()), store, zerolog.Nop())

	album := &scraper.Album{}
	report, err := o.Load(context.Background(), scraper.LoadRequest{
		Handle: store.Add(album), Provider: p, ID: mbid, Fields: scraper.Fields(scraper.FieldCdArt),
	})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Empty(t, album.Posters)
	require.Len(t, album.CdArts, 1)
	assert.Equal(t, "https://assets.fanart.tv/preview/music/a/cdart/okc.png", album.CdArts[0].ThumbURL)
	assert.Equal(t, mbid, album.ID(scraper.IDMusicBrainz))
}

func TestLoad_NotFound(t *testing.T) {
	server := newTestServer(t, map[string]string{})
	p := New(Config{APIKey: "test-key", BaseURL: server.URL}, zerolog.Nop())
	store := scraper.NewStore()
	o := scraper.NewOrchestrator(transport.New(transport.Config{}, zerolog.Nop()), store, zerolog.Nop())

	report, err := o.Load(context.Background(), scraper.LoadRequest{
		Handle: store.Add(&scraper.Artist{}), Provider: p, ID: "missing", Fields: scraper.AllFields,
	})
	require.NoError(t, err)
	require.Contains(t, report.Errors, scraper.KindImages)
	assert.Equal(t, scraper.ErrorNetwork, report.Errors[scraper.KindImages].Type)
}

func TestRoutes(t *testing.T) {
	p := New(Config{}, zerolog.Nop())
	for _, m := range p.MediaTypes() {
		require.NoError(t, scraper.ValidateRoutes(p.Routes(m)))
	}
	assert.Nil(t, p.Routes(scraper.MediaEpisode))
	assert.False(t, p.Routes(scraper.MediaArtist)[0].Fields.Has(scraper.FieldPoster))
}
