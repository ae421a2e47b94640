package fanarttv

// artwork is a single image entry as returned by fanart.tv.
type artwork struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Lang     string `json:"lang"`
	Likes    string `json:"likes"`
	Disc     string `json:"disc,omitempty"`
	DiscType string `json:"disc_type,omitempty"`
	Size     string `json:"size,omitempty"`
}

type movieResponse struct {
	Name            string    `json:"name"`
	TmdbID          string    `json:"tmdb_id"`
	ImdbID          string    `json:"imdb_id"`
	MoviePoster     []artwork `json:"movieposter"`
	MovieBackground []artwork `json:"moviebackground"`
	HDMovieLogo     []artwork `json:"hdmovielogo"`
	MovieLogo       []artwork `json:"movielogo"`
	MovieBanner     []artwork `json:"moviebanner"`
	MovieThumb      []artwork `json:"moviethumb"`
	HDMovieClearArt []artwork `json:"hdmovieclearart"`
	MovieArt        []artwork `json:"movieart"`
	MovieDisc       []artwork `json:"moviedisc"`
}

type albumArtwork struct {
	AlbumCover []artwork `json:"albumcover"`
	CdArt      []artwork `json:"cdart"`
}

// musicResponse covers both /music/{mbid} and /music/albums/{mbid}.
type musicResponse struct {
	Name             string                  `json:"name"`
	MbID             string                  `json:"mbid_id"`
	ArtistBackground []artwork               `json:"artistbackground"`
	ArtistThumb      []artwork               `json:"artistthumb"`
	HDMusicLogo      []artwork               `json:"hdmusiclogo"`
	MusicLogo        []artwork               `json:"musiclogo"`
	MusicBanner      []artwork               `json:"musicbanner"`
	Albums           map[string]albumArtwork `json:"albums"`
}
