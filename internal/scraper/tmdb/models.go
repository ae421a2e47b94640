package tmdb

// movieInfo is the response of GET /movie/{id}.
type movieInfo struct {
	ID                  int            `json:"id"`
	ImdbID              string         `json:"imdb_id"`
	Title               string         `json:"title"`
	OriginalTitle       string         `json:"original_title"`
	Tagline             string         `json:"tagline"`
	Overview            string         `json:"overview"`
	ReleaseDate         string         `json:"release_date"`
	Runtime             *int           `json:"runtime"`
	VoteAverage         *float64       `json:"vote_average"`
	VoteCount           int            `json:"vote_count"`
	BelongsToCollection *collection    `json:"belongs_to_collection"`
	Genres              []namedEntry   `json:"genres"`
	ProductionCompanies []namedEntry   `json:"production_companies"`
	ProductionCountries []countryEntry `json:"production_countries"`
}

type collection struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// namedEntry is a genre or company. ID is nil when absent.
type namedEntry struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

type countryEntry struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// castsResponse is the response of GET /movie/{id}/casts.
type castsResponse struct {
	ID   int          `json:"id"`
	Cast []castMember `json:"cast"`
	Crew []crewMember `json:"crew"`
}

type castMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type crewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// trailersResponse is the response of GET /movie/{id}/trailers.
type trailersResponse struct {
	ID      int            `json:"id"`
	Youtube []trailerEntry `json:"youtube"`
}

type trailerEntry struct {
	Name   string `json:"name"`
	Size   string `json:"size"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// imagesResponse is the response of GET /movie/{id}/images.
type imagesResponse struct {
	ID        int          `json:"id"`
	Backdrops []imageEntry `json:"backdrops"`
	Posters   []imageEntry `json:"posters"`
}

type imageEntry struct {
	FilePath string `json:"file_path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ISO639   string `json:"iso_639_1"`
}

// releasesResponse is the response of GET /movie/{id}/releases.
type releasesResponse struct {
	ID        int            `json:"id"`
	Countries []releaseEntry `json:"countries"`
}

type releaseEntry struct {
	ISO3166       string `json:"iso_3166_1"`
	Certification string `json:"certification"`
	ReleaseDate   string `json:"release_date"`
}

// searchResponse covers both /search/movie pages and single movie lookups.
type searchResponse struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Results    []searchEntry `json:"results"`
	searchEntry
}

type searchEntry struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
}

// configurationResponse is the response of GET /configuration.
type configurationResponse struct {
	Images struct {
		BaseURL       string `json:"base_url"`
		SecureBaseURL string `json:"secure_base_url"`
	} `json:"images"`
}
