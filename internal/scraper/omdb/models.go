package omdb

// Response represents the OMDb title response.
type Response struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	ImdbRating string   `json:"imdbRating"`
	ImdbVotes  string   `json:"imdbVotes"`
	ImdbID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	Production string   `json:"Production"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error,omitempty"`
}

// Rating represents a single rating from a source.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// SearchResponse represents the OMDb s= search response.
type SearchResponse struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error,omitempty"`
}

// SearchItem is one hit of a search response.
type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}
